package main

import (
	"flag"
	"fmt"
	"log"

	"stark-ops.backend/pkg/crypto"
)

func main() {
	existing := flag.String("key", "", "hash an existing key instead of generating one")
	flag.Parse()

	key, hash, err := buildCredentials(*existing)
	if err != nil {
		log.Fatalf("failed to build credentials: %v", err)
	}

	fmt.Println("Generated API credentials")
	fmt.Printf("API_KEY=%s\n", key)
	fmt.Printf("API_KEY_HASH=%s\n", hash)
}

// buildCredentials generates a fresh API key (or reuses the given one) and
// its bcrypt hash for the API_KEY_HASH environment variable.
func buildCredentials(existing string) (string, string, error) {
	key := existing
	if key == "" {
		generated, err := crypto.GenerateAPIKey()
		if err != nil {
			return "", "", err
		}
		key = generated
	}

	hash, err := crypto.HashAPIKey(key)
	if err != nil {
		return "", "", err
	}
	return key, hash, nil
}
