package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"

	"drinkaware/internal/providers"
	"drinkaware/internal/structures"
	"drinkaware/internal/upstream"
)

// runAuthorize walks the user through the authorization-code flow on
// the terminal. The login page redirects to the mobile app's custom
// scheme, which goes nowhere in a browser, so the user copies the
// resulting address back here and a ready-to-paste accounts entry is
// printed at the end.
func runAuthorize(flags *structures.CliFlags) error {
	conf, err := providers.NewConfigProvider(flags)
	if err != nil {
		return err
	}

	flow := upstream.NewAuthFlow(&conf.API)
	verifier := flow.NewVerifier()
	state := oauth2.GenerateVerifier()

	fmt.Println("Open this URL in your browser and sign in:")
	fmt.Println()
	fmt.Println("  " + flow.AuthorizationURL(state, verifier))
	fmt.Println()
	fmt.Println("After signing in the browser will try to open a uk.co.drinkaware.drinkaware:// address and fail.")
	fmt.Println("Copy that address (or just the code from it) and paste it here:")
	fmt.Print("> ")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	if !scanner.Scan() {
		return fmt.Errorf("no input")
	}
	code, ok := upstream.ExtractCode(scanner.Text())
	if !ok {
		return fmt.Errorf("could not find an authorization code in the pasted text")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	creds, err := flow.Exchange(ctx, code, verifier)
	if err != nil {
		return err
	}
	if err := flow.Test(ctx, creds.AccessToken); err != nil {
		return fmt.Errorf("token works for login but not for the tracking API: %w", err)
	}

	id, email := "my-account", ""
	if claims, err := upstream.ParseTokenClaims(creds.AccessToken); err == nil {
		if claims.Subject != "" {
			id = claims.Subject
		}
		email = claims.Email
	}

	fmt.Println()
	fmt.Println("Authorization succeeded. Add this to the accounts section of your config:")
	fmt.Println()
	fmt.Printf("  - id: %s\n", id)
	fmt.Printf("    name: %s\n", id)
	if email != "" {
		fmt.Printf("    email: %s\n", email)
	}
	fmt.Printf("    accessToken: %s\n", creds.AccessToken)
	if creds.RefreshToken != "" {
		fmt.Printf("    refreshToken: %s\n", creds.RefreshToken)
	}
	return nil
}
