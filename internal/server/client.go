package server

import (
	"context"

	"google.golang.org/grpc"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

// Client calls FileService as the holder of one session token.
type Client struct {
	cc    grpc.ClientConnInterface
	token string
}

func NewClient(cc grpc.ClientConnInterface, token string) *Client {
	return &Client{cc: cc, token: token}
}

// WithToken returns a client for another session on the same connection.
func (c *Client) WithToken(token string) *Client {
	return &Client{cc: c.cc, token: token}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	ctx = middleware.OutgoingToken(ctx, c.token)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) Upload(ctx context.Context, req *UploadRequest) (*models.FileRecord, error) {
	out := new(models.FileRecord)
	if err := c.invoke(ctx, "Upload", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Show(ctx context.Context, id string) (*models.FileRecord, error) {
	out := new(models.FileRecord)
	if err := c.invoke(ctx, "Show", &FileRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Index(ctx context.Context, parentID string, page int) ([]*models.FileRecord, error) {
	out := new(IndexResponse)
	if err := c.invoke(ctx, "Index", &IndexRequest{ParentID: parentID, Page: page}, out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

func (c *Client) Publish(ctx context.Context, id string) (*models.FileRecord, error) {
	out := new(models.FileRecord)
	if err := c.invoke(ctx, "Publish", &FileRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Unpublish(ctx context.Context, id string) (*models.FileRecord, error) {
	out := new(models.FileRecord)
	if err := c.invoke(ctx, "Unpublish", &FileRequest{ID: id}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Data(ctx context.Context, id string, size int) (*DataResponse, error) {
	out := new(DataResponse)
	if err := c.invoke(ctx, "Data", &DataRequest{ID: id, Size: size}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.invoke(ctx, "Disconnect", &Empty{}, &Empty{})
}

func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.invoke(ctx, "Status", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	out := new(StatsResponse)
	if err := c.invoke(ctx, "Stats", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}
