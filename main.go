package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/cipherdrop/cipherdrop/artifacts"
	"github.com/cipherdrop/cipherdrop/authenticator"
	"github.com/cipherdrop/cipherdrop/challenges"
	"github.com/cipherdrop/cipherdrop/config"
	"github.com/cipherdrop/cipherdrop/controllers"
	"github.com/cipherdrop/cipherdrop/cryptobox"
	"github.com/cipherdrop/cipherdrop/models"
	"github.com/cipherdrop/cipherdrop/routes"
	"github.com/cipherdrop/cipherdrop/storage"
	"github.com/cipherdrop/cipherdrop/utils"
)

func main() {
	// .env feeds the environment before config reads it; a missing file is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Artifact{}, &models.Challenge{})

	utils.InitRedis(cfg)

	codec, err := cryptobox.New(cryptobox.Options{
		Algorithm:   cfg.CryptoAlgorithm,
		NonceLength: cfg.CryptoNonceLength,
		Key:         cfg.EncryptionKey,
		Passphrase:  cfg.EncryptionPassphrase,
	})
	if err != nil {
		utils.Sugar.Fatalf("payload codec init failed: %v", err)
	}

	auth := authenticator.New(authenticator.Options{
		Issuer:     cfg.TOTPIssuer,
		PeriodSec:  cfg.TOTPPeriodSec,
		Digits:     cfg.TOTPDigits,
		Skew:       cfg.TOTPSkew,
		SecretSize: cfg.TOTPSecretSize,
	})

	artifactStore := artifacts.NewStore(db)
	challengeStore := challenges.NewStore(db)
	issuer := challenges.NewIssuer(challengeStore, challenges.Options{
		Length:     cfg.CaptchaLength,
		Width:      cfg.CaptchaWidth,
		Height:     cfg.CaptchaHeight,
		NoiseCount: cfg.CaptchaNoiseCount,
		Expiry:     cfg.CaptchaExpiry(),
	})
	limiter := utils.NewAttemptLimiter(cfg.CodeFailMaxPerHour, cfg.CodeFailBanMinutes)

	sweeper := challenges.NewSweeper(challengeStore, cfg.CaptchaExpiry(), cfg.CaptchaSweepInterval(), utils.Sugar)
	sweeper.Start()
	defer sweeper.Stop()

	share := controllers.NewShareController(cfg, codec, auth, artifactStore, buildBlobStore(cfg), challengeStore, issuer, limiter)

	r := routes.SetupRouter(cfg, share)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func buildBlobStore(cfg config.AppConfig) storage.BlobStore {
	switch cfg.StorageDriver {
	case "s3":
		s3, err := storage.NewS3(context.Background(), storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			utils.Sugar.Fatalf("s3 blob store init failed: %v", err)
		}
		return s3
	default:
		fs, err := storage.NewFS(cfg.StorageRoot)
		if err != nil {
			utils.Sugar.Fatalf("fs blob store init failed: %v", err)
		}
		return fs
	}
}
