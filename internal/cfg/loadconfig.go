package cfg

import (
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/file"

	"github.com/spf13/viper"
)

// loadConfigFile loads any viper-supported config file beneath flags and environment.
func loadConfigFile(path string) error {
	if err := file.LoadConfigFile(viper.GetViper(), path); err != nil {
		return err
	}
	logger.Pl.D(1, "Loaded config file %q", viper.ConfigFileUsed())
	return nil
}
