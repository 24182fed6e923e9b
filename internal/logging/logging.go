// Package logging builds the structured logger used by cmd/matchd
// (cmd/scriptrunner writes plain stdout/stderr instead), in the shape finalex's
// market-maker-bot/logging package uses: a single constructor picking
// a zap preset by environment name.
package logging

import "go.uber.org/zap"

// New builds a *zap.Logger for env ("prod" gets the JSON production
// encoder; anything else gets the human-readable development encoder).
func New(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
