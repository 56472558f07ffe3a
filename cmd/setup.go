package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/favdl/internal/shared"
)

// Setup creates the config file if needed, optionally stores a SESSDATA token taken from a
// browser cURL command, and runs the history database migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		r.config = config
		r.writePlain("✓ Created %s\n", configPath)
	}

	if curlCmd != "" || curlFile != "" {
		token, err := r.sessdataFromCurl(curlCmd, curlFile)
		if err != nil {
			return err
		}

		r.config.Credentials.Sessdata = token
		if err := shared.SaveConfig(configPath, r.config); err != nil {
			return err
		}
		r.logger.Info("stored session token", "path", configPath, "length", len(token))
		r.writePlain("✓ Stored SESSDATA in %s\n", configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)

	if r.config.Credentials.Sessdata == "" && r.sessdata == "" {
		r.writePlainln("Next steps:")
		r.writePlain("1. Copy a request to api.bilibili.com as cURL from your browser DevTools\n")
		r.writePlain("2. Run 'favdl setup --curl \"<command>\"' or set FAVDL_SESSDATA\n")
	}
	return nil
}

func (r *Runner) sessdataFromCurl(curlCmd, curlFile string) (string, error) {
	var headers *shared.CurlHeaders
	var err error

	if curlFile != "" {
		if headers, err = shared.ParseCurlFile(curlFile); err != nil {
			return "", fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Debug("parsed cURL from file", "file", curlFile)
	} else {
		if headers, err = shared.ParseCurlCommand(curlCmd); err != nil {
			return "", fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Debug("parsed cURL command")
	}

	return headers.Sessdata()
}
