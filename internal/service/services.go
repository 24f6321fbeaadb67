package service

import (
	"github.com/Rijass/Spotify-Stats/internal/config"
	"github.com/Rijass/Spotify-Stats/internal/repository"
	"github.com/Rijass/Spotify-Stats/internal/secrets"
	"github.com/Rijass/Spotify-Stats/internal/spotify"
	"github.com/rs/zerolog"
)

type Services struct {
	User         *UserService
	SpotifyToken *SpotifyTokenService
	Spotify      *SpotifyService
	Chart        *ChartService
	Ingestion    *ChartIngestionJob
}

func NewServices(repos *repository.Repositories, cfg *config.Config, logger zerolog.Logger) (*Services, error) {
	codec, err := secrets.NewCodec(cfg.CryptoPassword, cfg.CryptoSalt)
	if err != nil {
		return nil, err
	}
	scheme, err := NewSessionScheme(cfg, codec, repos.Session)
	if err != nil {
		return nil, err
	}

	auth := spotify.NewAuthClient(cfg)
	api := spotify.NewAPIClient(cfg.SpotifyAPIURL)

	tokens := NewSpotifyTokenService(repos.ProviderToken, codec, auth, cfg)
	charts := NewChartService(repos.Chart, repos.Song, auth, api, cfg, logger)

	return &Services{
		User:         NewUserService(repos.Account, scheme, codec),
		SpotifyToken: tokens,
		Spotify:      NewSpotifyService(auth, api, tokens, scheme, cfg),
		Chart:        charts,
		Ingestion:    NewChartIngestionJob(charts, cfg, logger),
	}, nil
}
