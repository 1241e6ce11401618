// ABOUTME: Basic example showing how to read and publish posts with the Quill client
// ABOUTME: Demonstrates environment configuration, waking the backend and retry-safe writes

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/richochetclementine1315/Quill/core/domain"
	"github.com/richochetclementine1315/Quill/pkg/config"
	"github.com/richochetclementine1315/Quill/quill"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	client, err := quill.NewClient(quill.WithConfig(cfg))
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}
	defer client.Close()

	ctx := context.Background()

	// A sleeping free-tier backend can take a minute to answer
	fmt.Println("=== Waking Backend ===")
	if client.Probe(ctx) {
		fmt.Println("Backend is awake")
	} else {
		fmt.Println("Backend did not answer; calls will still be retried")
	}

	fmt.Println("\n=== Latest Posts ===")
	var info quill.ResultInfo
	page, err := client.ListPosts(ctx, 1, quill.WithResultInfo(&info))
	if err != nil {
		log.Printf("Error listing posts: %v\n", err)
	} else {
		for _, post := range page.Data {
			fmt.Printf("- #%d %s\n", post.ID, post.Title)
		}
		fmt.Printf("Page %d of %d (%d attempts)\n", page.Meta.Page, page.Meta.LastPage, info.Attempts)
	}

	email, password := os.Getenv("QUILL_EMAIL"), os.Getenv("QUILL_PASSWORD")
	if email == "" || password == "" {
		return
	}

	fmt.Println("\n=== Publishing ===")
	if _, err := client.Login(ctx, domain.LoginRequest{Email: email, Password: password}); err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	// The key lets the create be retried without publishing twice
	created, err := client.CreatePost(ctx, domain.PostInput{
		Title: "Hello from the Go client",
		Desc:  "Posted with retries and an idempotency key.",
	}, quill.WithNewIdempotencyKey())
	var qerr *quill.Error
	switch {
	case errors.As(err, &qerr) && qerr.Kind.Transient():
		fmt.Println("Backend unavailable, try again later")
	case err != nil:
		log.Printf("Create failed: %v\n", err)
	default:
		fmt.Printf("Created post #%d\n", created.Post.ID)
	}
}
