package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"intervals/backend/internal/config"
	"intervals/backend/internal/service"
)

func main() {
	subject := flag.String("subject", "local", "token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to TOKEN_TTL_HOURS)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	tokenTTL := cfg.TokenTTL
	if *ttl > 0 {
		tokenTTL = *ttl
	}

	authService := service.NewAuthService(cfg.APISecret, tokenTTL)
	result, apiErr := authService.IssueToken(*subject)
	if apiErr != nil {
		log.Fatalf("issue token: %s", apiErr.Message)
	}

	fmt.Println(result.Token)
	log.Printf("token for %q expires %s", result.Subject, result.ExpiresAt.Format(time.RFC3339))
}
