// Command devtoken prints an access token signed with JWT_SECRET, for
// calling the API locally without the identity service.
//
//	go run ./cmd/devtoken -user 5 -role CUSTOMER
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/restaurant-table-booking/internal/logger"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
	"github.com/iliyamo/restaurant-table-booking/internal/utils"
)

func main() {
	userID := flag.Uint64("user", 0, "user id (token subject)")
	role := flag.String("role", model.RoleCustomer, "CUSTOMER or OWNER")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	log := logger.New(logger.Config{Format: logger.FormatText, Output: os.Stderr})
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if *userID == 0 {
		log.Fatal("-user is required")
	}

	tok, err := utils.NewAccessToken(secret, *userID, *role, *ttl)
	if err != nil {
		log.Fatal("sign token", "error", err)
	}
	fmt.Println(tok.Token)
}
