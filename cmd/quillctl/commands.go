package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/richochetclementine1315/Quill/core/domain"
	"github.com/richochetclementine1315/Quill/quill"
)

// ProbeCommand wakes the backend
type ProbeCommand struct {
	root *Options
}

// Execute implements flags.Commander
func (c *ProbeCommand) Execute(args []string) error {
	return c.root.withClient(func(ctx context.Context, client *quill.Client) error {
		awake := client.Probe(ctx)
		state := "asleep"
		if awake {
			state = "awake"
		}
		if err := c.root.print(map[string]bool{"awake": awake}, "backend is "+state); err != nil {
			return err
		}
		if !awake {
			return errors.New("backend did not answer the probe")
		}
		return nil
	})
}

// LoginCommand signs in
type LoginCommand struct {
	Email    string `long:"email" required:"true" description:"Account email"`
	Password string `long:"password" env:"QUILL_PASSWORD" required:"true" description:"Account password"`

	root *Options
}

// Execute implements flags.Commander
func (c *LoginCommand) Execute(args []string) error {
	return c.root.withClient(func(ctx context.Context, client *quill.Client) error {
		resp, err := client.Login(ctx, domain.LoginRequest{Email: c.Email, Password: c.Password})
		if err != nil {
			return err
		}
		token := c.root.creds.Token()
		if token == "" {
			return errors.New("login succeeded but no session cookie was issued")
		}
		return c.root.print(map[string]string{"message": resp.Message, "token": token},
			resp.Message,
			"export QUILL_TOKEN="+token,
		)
	})
}

// PostsCommand groups the post subcommands
type PostsCommand struct {
	List   ListPostsCommand  `command:"list" description:"List one page of posts"`
	Get    GetPostsCommand   `command:"get" description:"Show posts by id"`
	Mine   MinePostsCommand  `command:"mine" description:"List your own posts"`
	Create CreatePostCommand `command:"create" description:"Publish a post"`
	Delete DeletePostCommand `command:"delete" description:"Delete a post"`
}

// ListPostsCommand lists one page
type ListPostsCommand struct {
	Page int `long:"page" default:"1" description:"Page number"`

	root *Options
}

// Execute implements flags.Commander
func (c *ListPostsCommand) Execute(args []string) error {
	return c.root.withClient(func(ctx context.Context, client *quill.Client) error {
		var info quill.ResultInfo
		page, err := client.ListPosts(ctx, c.Page, quill.WithResultInfo(&info))
		if err != nil {
			return err
		}
		lines := postLines(page.Data)
		footer := fmt.Sprintf("page %d of %d, %d posts", page.Meta.Page, page.Meta.LastPage, page.Meta.Total)
		if info.Stale {
			footer += " (cached, backend unavailable)"
		}
		return c.root.print(page, append(lines, footer)...)
	})
}

// GetPostsCommand shows posts by id
type GetPostsCommand struct {
	Args struct {
		IDs []uint `positional-arg-name:"id" required:"1"`
	} `positional-args:"yes"`

	root *Options
}

// Execute implements flags.Commander
func (c *GetPostsCommand) Execute(args []string) error {
	return c.root.withClient(func(ctx context.Context, client *quill.Client) error {
		posts, err := client.GetPosts(ctx, c.Args.IDs)
		found := make([]domain.Post, 0, len(posts))
		for _, p := range posts {
			if p != nil {
				found = append(found, *p)
			}
		}
		if perr := c.root.print(found, postLines(found)...); perr != nil {
			return perr
		}
		return err
	})
}

// MinePostsCommand lists the signed-in user's posts
type MinePostsCommand struct {
	root *Options
}

// Execute implements flags.Commander
func (c *MinePostsCommand) Execute(args []string) error {
	return c.root.withClient(func(ctx context.Context, client *quill.Client) error {
		posts, err := client.ListMyPosts(ctx)
		if err != nil {
			return err
		}
		return c.root.print(posts, postLines(posts)...)
	})
}

// CreatePostCommand publishes a post
type CreatePostCommand struct {
	Title          string `long:"title" required:"true" description:"Post title"`
	Desc           string `long:"desc" description:"Post body"`
	Image          string `long:"image" description:"Image URL"`
	IdempotencyKey string `long:"idempotency-key" description:"Allow retries; the backend must deduplicate on this key"`

	root *Options
}

// Execute implements flags.Commander
func (c *CreatePostCommand) Execute(args []string) error {
	return c.root.withClient(func(ctx context.Context, client *quill.Client) error {
		var opts []quill.CallOption
		if c.IdempotencyKey != "" {
			opts = append(opts, quill.WithIdempotencyKey(c.IdempotencyKey))
		}
		resp, err := client.CreatePost(ctx, domain.PostInput{Title: c.Title, Desc: c.Desc, Image: c.Image}, opts...)
		if err != nil {
			return err
		}
		return c.root.print(resp, fmt.Sprintf("created post #%d", resp.Post.ID))
	})
}

// DeletePostCommand deletes a post
type DeletePostCommand struct {
	Args struct {
		ID uint `positional-arg-name:"id" required:"yes"`
	} `positional-args:"yes"`

	root *Options
}

// Execute implements flags.Commander
func (c *DeletePostCommand) Execute(args []string) error {
	return c.root.withClient(func(ctx context.Context, client *quill.Client) error {
		resp, err := client.DeletePost(ctx, c.Args.ID)
		if err != nil {
			return err
		}
		return c.root.print(resp, resp.Message)
	})
}

// UploadCommand uploads an image
type UploadCommand struct {
	Args struct {
		File string `positional-arg-name:"file" required:"yes"`
	} `positional-args:"yes"`

	root *Options
}

// Execute implements flags.Commander
func (c *UploadCommand) Execute(args []string) error {
	f, err := os.Open(c.Args.File)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.root.withClient(func(ctx context.Context, client *quill.Client) error {
		resp, err := client.UploadImage(ctx, c.Args.File, f)
		if err != nil {
			return err
		}
		return c.root.print(resp, resp.URL)
	})
}

func postLines(posts []domain.Post) []string {
	lines := make([]string, 0, len(posts))
	for _, p := range posts {
		line := fmt.Sprintf("#%d  %s", p.ID, p.Title)
		if author := strings.TrimSpace(p.User.FirstName + " " + p.User.LastName); author != "" {
			line += "  by " + author
		}
		lines = append(lines, line)
	}
	return lines
}
