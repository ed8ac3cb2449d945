package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/bazaar-labs/gatehouse/adapters/events"
	"github.com/bazaar-labs/gatehouse/adapters/registry"
	"github.com/bazaar-labs/gatehouse/adapters/store"
	"github.com/bazaar-labs/gatehouse/adapters/tokenizer"
	"github.com/bazaar-labs/gatehouse/service"
	"github.com/bazaar-labs/gatehouse/transport/http"
)

func main() {
	signKey, err := loadSessionKey()
	if err != nil {
		log.Fatalf("Failed to load session signing key: %v", err)
	}

	adminWallets := os.Getenv("GATEHOUSE_ADMIN_WALLETS")
	if adminWallets == "" {
		log.Fatal("GATEHOUSE_ADMIN_WALLETS must list at least one admin wallet")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	redisClient := redis.NewClient(opts)

	logger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create Redis publisher: %v", err)
	}

	jwtTokenizer := tokenizer.NewJWTTokenizer(signKey)
	challengeStore := store.NewRedisChallengeStore(redisClient)
	sessionStore := store.NewRedisSessionStore(redisClient)
	entityStore := store.NewRedisEntityStore(redisClient)
	adminRegistry := registry.NewStaticRegistryFromEnv(adminWallets)
	eventPub := events.NewWatermillPublisher(publisher)

	authService := service.NewAuthService(challengeStore, sessionStore, jwtTokenizer, adminRegistry, eventPub)
	moderationService := service.NewModerationService(entityStore, entityStore, eventPub)
	orderService := service.NewOrderService(entityStore, entityStore, eventPub)

	router := http.SetupRouter(authService, moderationService, orderService)

	addr := os.Getenv("GATEHOUSE_LISTEN_ADDR")
	if addr == "" {
		addr = ":9000"
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadSessionKey reads the ES256 signing key from GATEHOUSE_SESSION_KEY_FILE
// (PEM, EC PRIVATE KEY). Without one a fresh key is generated, which is fine
// for development but invalidates all sessions on restart.
func loadSessionKey() (*ecdsa.PrivateKey, error) {
	path := os.Getenv("GATEHOUSE_SESSION_KEY_FILE")
	if path == "" {
		log.Println("GATEHOUSE_SESSION_KEY_FILE not set, generating an ephemeral session key")
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("session key file does not contain a PEM block")
	}

	return x509.ParseECPrivateKey(block.Bytes)
}
