package command

import (
	"fmt"

	"github.com/joho/godotenv"
)

func loadEnvFile(path string) error {
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
