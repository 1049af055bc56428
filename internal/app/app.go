// Package app wires settings into the running services.
package app

import (
	"fetcharr/internal/blocking"
	"fetcharr/internal/command/builder"
	"fetcharr/internal/command/execute"
	"fetcharr/internal/config"
	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/downloads"
	"fetcharr/internal/file"
	"fetcharr/internal/metadata"
)

// App holds the services built from one Settings value.
type App struct {
	Settings  config.Settings
	Service   *downloads.Service
	Retriever *metadata.Retriever
	Files     *file.Server
	Breaker   *blocking.Breaker
}

// New builds the download pipeline. runner may be nil to use real processes.
func New(s config.Settings, runner execute.Runner) *App {
	b := builder.New(s)
	infoExec := execute.New(runner, s.InfoTimeout)
	downloadExec := execute.New(runner, s.DownloadTimeout)

	providers := []metadata.Provider{metadata.NewExtractorProvider(b, infoExec)}
	if s.InfoNative {
		providers = append(providers, metadata.NewNativeProvider(consts.HTTPClientTimeout))
	}
	if s.InfoMirrors {
		providers = append(providers, metadata.NewMirrorProvider(s.MirrorHosts, consts.MirrorTimeout, builder.RandomPicker(s.UserAgents)))
	}
	providers = append(providers, metadata.SyntheticProvider{})
	retriever := metadata.NewRetriever(providers...)

	breaker := blocking.NewBreaker(s.BlockCooldown)

	logger.Pl.D(1, "Info providers: %v, block cooldown: %v", retriever.Providers(), s.BlockCooldown)
	return &App{
		Settings:  s,
		Service:   downloads.NewService(s, retriever, b, downloadExec, breaker),
		Retriever: retriever,
		Files:     file.NewServer(s.TempDir),
		Breaker:   breaker,
	}
}
