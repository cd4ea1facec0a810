package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"slidemovie/internal/config"
	"slidemovie/internal/logging"
	"slidemovie/internal/project"
	"slidemovie/internal/status"
)

type commandContext struct {
	configFlag    *string
	projectFlag   *string
	sourceDirFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, projectFlag, sourceDirFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		projectFlag:   projectFlag,
		sourceDirFlag: sourceDirFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) projectName() string {
	if c.projectFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.projectFlag)
}

func (c *commandContext) sourceDir() string {
	if c.sourceDirFlag == nil || strings.TrimSpace(*c.sourceDirFlag) == "" {
		return "."
	}
	return strings.TrimSpace(*c.sourceDirFlag)
}

// resolveProject combines the persistent flags into a project layout.
// Every project-scoped command requires --project.
func (c *commandContext) resolveProject(outputName string) (*config.Config, *project.Project, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	name := c.projectName()
	if name == "" {
		return nil, nil, fmt.Errorf("--project is required (the script is <name>.md in the source directory)")
	}
	proj, err := project.Resolve(cfg, name, c.sourceDir(), outputName)
	if err != nil {
		return nil, nil, err
	}
	return cfg, proj, nil
}

func (c *commandContext) openStore(proj *project.Project) (*status.Store, error) {
	return status.Load(proj.StatusPath, proj.Name)
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}
