// Command devtoken mints HS256 identity tokens accepted by the API when it
// runs with JWT_SECRET and no Firebase project.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harentsoaR/doctors-portal-api/internal/auth"
	"github.com/harentsoaR/doctors-portal-api/internal/config"
)

func main() {
	email := flag.String("email", "", "email claim for the token")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: devtoken -email you@example.com [-ttl 1h]")
		os.Exit(2)
	}

	cfg := config.Load()
	v, err := auth.NewLocalVerifier(cfg.JWTSecret)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}

	token, err := v.Generate(*email, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
