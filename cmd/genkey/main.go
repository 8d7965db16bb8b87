package main

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

// genkey prints a fresh merchant API key with the hash and suffix that are
// stored for it.
func main() {
	key, hash, prefix, err := domain.GenerateAPIKey()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("KEY=%s\nHASH=%s\nPREFIX=%s\n", key, hash, prefix)
}
