package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/unclebandit/scaletracker-backend/internal/config"
)

// One-time helper that walks through the Google OAuth consent flow and
// prints the refresh token to store under the google_refresh_token setting.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	clientID := flag.String("client-id", os.Getenv("GOOGLE_CLIENT_ID"), "OAuth client ID")
	clientSecret := flag.String("client-secret", os.Getenv("GOOGLE_CLIENT_SECRET"), "OAuth client secret")
	flag.Parse()

	if *clientID == "" || *clientSecret == "" {
		log.Fatal("client-id and client-secret are required")
	}

	cfg, err := config.LoadFromEnv("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Sheets.RedirectURI,
		Scopes:       []string{"https://www.googleapis.com/auth/spreadsheets"},
	}

	url := oauthCfg.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	fmt.Println("Open this URL in your browser and approve access:")
	fmt.Println()
	fmt.Println("  " + url)
	fmt.Println()
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("failed to read code: %v", err)
	}
	code = strings.TrimSpace(code)

	token, err := oauthCfg.Exchange(context.Background(), code)
	if err != nil {
		log.Fatalf("token exchange failed: %v", err)
	}
	if token.RefreshToken == "" {
		log.Fatal("no refresh token returned; revoke the app's access and retry")
	}

	fmt.Println()
	fmt.Println("Refresh token (store as the google_refresh_token setting):")
	fmt.Println()
	fmt.Println("  " + token.RefreshToken)
}
