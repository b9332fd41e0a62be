package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	internalcli "github.com/puizinam/go-udp-hub/cli/internal"
	"github.com/puizinam/go-udp-hub/internal"
	"github.com/puizinam/go-udp-hub/internal/echo"
	"github.com/puizinam/go-udp-hub/internal/hub"
	"github.com/puizinam/go-udp-hub/internal/peer"
)

// This program writes a .env file with every configuration key the hub, the client and the echo tools
// read, set to its default value. The file is placed in the <build_directory>/ next to the binaries.
func main() {
	defaults, err := collectDefaults(&hub.Config{}, &peer.Config{}, &echo.Config{})
	if err != nil {
		internalcli.LogFatalError("failed to collect configuration keys", err)
	}

	build_dir, err := internalcli.CreateBuildDirectory()
	if err != nil {
		internalcli.LogFatalError(internalcli.BUILD_DIRECTORY_ERROR, err)
	}

	dotenv_path := build_dir + string(os.PathSeparator) + internal.DOTENV_FILENAME
	if err := godotenv.Write(defaults, dotenv_path); err != nil {
		internalcli.LogFatalError("failed to write "+internal.DOTENV_FILENAME, err)
	}

	fmt.Printf(
		"Successfully generated %s with %d keys in the %s/ directory.\n",
		internal.DOTENV_FILENAME, len(defaults), internalcli.BUILD_DIR_NAME,
	)
}

// This function maps every environment key declared on the given config structs to its envDefault.
// Keys shared by several structs (HUB_PORT for example) carry the same default everywhere.
func collectDefaults(configs ...any) (map[string]string, error) {
	defaults := make(map[string]string)
	for _, cfg := range configs {
		params, err := env.GetFieldParams(cfg)
		if err != nil {
			return nil, err
		}
		for _, p := range params {
			if p.HasDefaultValue {
				defaults[p.Key] = p.DefaultValue
			}
		}
	}
	return defaults, nil
}
