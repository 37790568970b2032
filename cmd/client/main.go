package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/server"
)

var (
	serverAddr string
	token      string
	timeout    time.Duration
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "filetree-client: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "filetree-client",
		Short:        "Command line client for the FileService API",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&serverAddr, "addr", "localhost:50051", "server address")
	cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("FILETREE_TOKEN"), "session token (default $FILETREE_TOKEN)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per call timeout")
	cmd.AddCommand(
		newUploadCmd(),
		newMkdirCmd(),
		newListCmd(),
		newShowCmd(),
		newPublishCmd(true),
		newPublishCmd(false),
		newGetCmd(),
		newLogoutCmd(),
		newStatusCmd(),
	)
	return cmd
}

// call dials the server, runs fn and prints its result as JSON.
func call(cmd *cobra.Command, fn func(ctx context.Context, c *server.Client) (any, error)) error {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(server.DefaultMaxMessageBytes)),
	)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	out, err := fn(ctx, server.NewClient(conn, token))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newUploadCmd() *cobra.Command {
	var parentID string
	var public bool
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file; images get thumbnails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			req := &server.UploadRequest{
				Name:     filepath.Base(args[0]),
				Type:     detectType(args[0]),
				ParentID: parentID,
				IsPublic: public,
				Data:     base64.StdEncoding.EncodeToString(data),
			}
			return call(cmd, func(ctx context.Context, c *server.Client) (any, error) {
				return c.Upload(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "parent folder id")
	cmd.Flags().BoolVar(&public, "public", false, "make the file public")
	return cmd
}

func newMkdirCmd() *cobra.Command {
	var parentID string
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &server.UploadRequest{Name: args[0], Type: "folder", ParentID: parentID}
			return call(cmd, func(ctx context.Context, c *server.Client) (any, error) {
				return c.Upload(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "parent folder id")
	return cmd
}

func newListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "ls [parent-id]",
		Short: "List one page of a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID := ""
			if len(args) == 1 {
				parentID = args[0]
			}
			return call(cmd, func(ctx context.Context, c *server.Client) (any, error) {
				return c.Index(ctx, parentID, page)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 0")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context, c *server.Client) (any, error) {
				return c.Show(ctx, args[0])
			})
		},
	}
}

func newPublishCmd(public bool) *cobra.Command {
	use, short := "publish <id>", "Make a record public"
	if !public {
		use, short = "unpublish <id>", "Make a record private"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context, c *server.Client) (any, error) {
				if public {
					return c.Publish(ctx, args[0])
				}
				return c.Unpublish(ctx, args[0])
			})
		},
	}
}

func newGetCmd() *cobra.Command {
	var size int
	var output string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Download a file or one of its thumbnails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context, c *server.Client) (any, error) {
				resp, err := c.Data(ctx, args[0], size)
				if err != nil {
					return nil, err
				}
				path := output
				if path == "" {
					path = resp.Name
				}
				if err := os.WriteFile(path, resp.Data, 0o644); err != nil {
					return nil, fmt.Errorf("failed to write file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes (%s) to %s\n", len(resp.Data), resp.ContentType, path)
				return nil, nil
			})
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "thumbnail width (100, 250 or 500)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: the file name)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context, c *server.Client) (any, error) {
				return nil, c.Disconnect(ctx)
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend liveness and file count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, func(ctx context.Context, c *server.Client) (any, error) {
				st, err := c.Status(ctx)
				if err != nil {
					return nil, err
				}
				stats, err := c.Stats(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{"db": st.DB, "sessions": st.Sessions, "files": stats.Files}, nil
			})
		},
	}
}

// detectType picks the upload type from the file extension.
func detectType(path string) string {
	if strings.HasPrefix(mime.TypeByExtension(filepath.Ext(path)), "image/") {
		return "image"
	}
	return "file"
}
