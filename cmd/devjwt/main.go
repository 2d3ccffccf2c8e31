// Command devjwt mints short-lived HS256 tokens for local testing against an
// API running with AUTH_MODE=jwt.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sharetrip-app/sharetrip-api/internal/platform/auth"
)

func main() {
	var (
		subject = flag.String("sub", "dev|local", "token subject")
		secret  = flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 signing secret (defaults to JWT_SECRET)")
		issuer  = flag.String("iss", "sharetrip", "token issuer")
		ttl     = flag.Duration("ttl", time.Hour, "token lifetime")
	)
	flag.Parse()

	token, err := auth.MintToken(auth.Config{Secret: *secret, Issuer: *issuer, TTL: *ttl}, *subject, time.Now())
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Println(token)
}
