package internal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const REPOSITORY_NAME = "go-udp-hub"
const BUILD_DIR_NAME = "dist"

var BUILD_DIRECTORY_ERROR = fmt.Sprintf("failed to create the %s/ directory", BUILD_DIR_NAME)

// This function creates a <build_directory>/ at the root of the repository and returns its absolute path.
// The repository root is located by walking up from the current working directory.
func CreateBuildDirectory() (string, error) {
	working_directory, err := os.Getwd()
	if err != nil {
		return "", err
	}

	repository_root_dir := findRepositoryRootDir(working_directory)
	if repository_root_dir == "" {
		return "", fmt.Errorf(
			"failed to find %s%c in the current working directory %s",
			REPOSITORY_NAME, os.PathSeparator, working_directory,
		)
	}

	build_dir := filepath.Join(repository_root_dir, BUILD_DIR_NAME)
	if err := os.MkdirAll(build_dir, os.ModePerm); err != nil {
		return "", err
	}
	return build_dir, nil
}

// This function returns the closest ancestor of path (path included) named REPOSITORY_NAME, or an
// empty string when there is none.
func findRepositoryRootDir(path string) string {
	for {
		if filepath.Base(path) == REPOSITORY_NAME {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "" // Reached the system's root directory
		}
		path = parent
	}
}

func LogFatalError(message string, err error) {
	if err != nil {
		log.Fatalf("Error: %s [%v]", message, err)
	}
}
