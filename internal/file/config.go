package file

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// LoadConfigFile loads a viper-supported configuration file into v.
func LoadConfigFile(v *viper.Viper, file string) error {
	info, err := os.Stat(file)
	switch {
	case err != nil:
		return fmt.Errorf("failed check for config file path: %w", err)
	case info.IsDir():
		return fmt.Errorf("config file %q is a directory, should be a file", file)
	case !info.Mode().IsRegular():
		return fmt.Errorf("config file %q is not a regular file", file)
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed reading config file %q: %w", file, err)
	}
	return nil
}
