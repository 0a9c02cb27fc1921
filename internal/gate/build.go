package gate

import (
	"github.com/0muji4/push-gate/internal/change"
	"github.com/0muji4/push-gate/internal/config"
	"github.com/0muji4/push-gate/internal/logger"
	"github.com/0muji4/push-gate/internal/source"
	"github.com/0muji4/push-gate/internal/validate"
	"github.com/0muji4/push-gate/internal/workspace"
)

// BuiltinValidators returns the syntax and style validators configured by cfg.
func BuiltinValidators(cfg *config.Config) []validate.Validator {
	return []validate.Validator{
		validate.NewSyntaxValidator(),
		validate.NewStyleValidator(validate.DefaultRules(cfg.Style.MaxLineLength), cfg.Style.IgnoreRules),
	}
}

// NewFromConfig assembles a Gate over svc. Extra validators run after the
// built-in ones.
func NewFromConfig(cfg *config.Config, svc workspace.RevisionService, log *logger.Logger, extra ...validate.Validator) *Gate {
	validators := append(BuiltinValidators(cfg), extra...)
	return New(
		change.NewResolver(svc),
		source.NewFetcher(svc, cfg.Scope.ExemptPrefixes, cfg.Scope.Extensions),
		validators,
		cfg.Workers,
		log,
	)
}
