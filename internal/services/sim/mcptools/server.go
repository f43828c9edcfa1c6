package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName = "rgsim"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// NewServer builds an MCP server with every simulation tool registered.
func NewServer(sim *Sim) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(server, sim)
	return server
}

func registerTools(server *mcp.Server, sim *Sim) {
	mcp.AddTool(server, StateTool(), StateHandler(sim))
	mcp.AddTool(server, AddRobotTool(), AddRobotHandler(sim))
	mcp.AddTool(server, RemoveRobotTool(), RemoveRobotHandler(sim))
	mcp.AddTool(server, SetHPTool(), SetHPHandler(sim))
	mcp.AddTool(server, SetTurnTool(), SetTurnHandler(sim))
	mcp.AddTool(server, ClearTool(), ClearHandler(sim))
	mcp.AddTool(server, PreviewTurnTool(), PreviewTurnHandler(sim))
	mcp.AddTool(server, CommitTurnTool(), CommitTurnHandler(sim))
}

// Serve runs server on stdio and blocks until the client disconnects or the
// context ends.
func Serve(ctx context.Context, server *mcp.Server) error {
	return serveWithTransport(ctx, server, &mcp.StdioTransport{})
}

func serveWithTransport(ctx context.Context, server *mcp.Server, transport mcp.Transport) error {
	if server == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := server.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
