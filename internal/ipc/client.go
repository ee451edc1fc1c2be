package ipc

import (
	"context"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

const dialTimeout = 2 * time.Second

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Call invokes a procedure and waits for the reply or for ctx to end.
// Server-side failures are returned as *RemoteError.
func (c *Client) Call(ctx context.Context, method string, args, reply any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	call := c.client.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case done := <-call.Done:
		return decodeError(done.Error)
	}
}

// CreateTodo stores a new todo and returns the persisted row.
func (c *Client) CreateTodo(ctx context.Context, title string) (*Todo, error) {
	var resp CreateTodoResponse
	if err := c.Call(ctx, serviceName+".CreateTodo", CreateTodoRequest{Title: title}, &resp); err != nil {
		return nil, err
	}
	return &resp.Todo, nil
}

// GetTodos returns every todo ordered by id.
func (c *Client) GetTodos(ctx context.Context) ([]Todo, error) {
	var resp GetTodosResponse
	if err := c.Call(ctx, serviceName+".GetTodos", GetTodosRequest{}, &resp); err != nil {
		return nil, err
	}
	if resp.Todos == nil {
		resp.Todos = []Todo{}
	}
	return resp.Todos, nil
}

// UpdateTodoCompletion sets the completed flag of todo id.
func (c *Client) UpdateTodoCompletion(ctx context.Context, id int64, completed bool) (*Todo, error) {
	var resp UpdateTodoCompletionResponse
	req := UpdateTodoCompletionRequest{ID: id, Completed: completed}
	if err := c.Call(ctx, serviceName+".UpdateTodoCompletion", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Todo, nil
}

// DeleteTodo removes todo id; a missing id is not an error.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	var resp DeleteTodoResponse
	return c.Call(ctx, serviceName+".DeleteTodo", DeleteTodoRequest{ID: id}, &resp)
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.Call(ctx, serviceName+".Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth(ctx context.Context) (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.Call(ctx, serviceName+".DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
