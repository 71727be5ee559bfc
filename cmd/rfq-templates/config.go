package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zintra/rfq-templates/pkg/configuration"
	"github.com/zintra/rfq-templates/pkg/rfqtemplate"
	"github.com/zintra/rfq-templates/pkg/templatefile"
)

type templateFlags struct {
	path        string
	profilePath string
}

type runContext struct {
	conf   *configuration.Configuration
	logger *logrus.Logger
	path   string
	opts   rfqtemplate.Options
}

func loadRunContext(flags templateFlags) (*runContext, error) {
	conf, err := configuration.New(configuration.DefaultEnvFiles)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("configuration: %w", err))
	}

	var profile *configuration.Profile
	if p := strings.TrimSpace(flags.profilePath); p != "" {
		profile, err = configuration.LoadProfile(p)
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
	}

	path := strings.TrimSpace(flags.path)
	if path == "" {
		path = conf.Templates.Path
	}
	if path == "" {
		return nil, withCode(exitUsage, fmt.Errorf("--path is required (or set RFQ_TEMPLATES_PATH)"))
	}

	return &runContext{
		conf:   conf,
		logger: conf.Logger(),
		path:   path,
		opts:   conf.NormalizeOptions(profile),
	}, nil
}

// loadSnapshot maps load failures onto exit codes.
func loadSnapshot(path string) (*templatefile.Snapshot, error) {
	snap, err := templatefile.Load(path)
	switch {
	case err == nil:
		return snap, nil
	case is(err, templatefile.ErrNotFound):
		return nil, withCode(exitUsage, fmt.Errorf("file not found at %s: %w", path, err))
	case is(err, templatefile.ErrMalformed):
		return nil, withCode(exitValidation, err)
	default:
		return nil, withCode(exitIO, err)
	}
}
