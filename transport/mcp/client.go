package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/robot-challenge/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Robot Challenge",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Robot Challenge - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Write a program for a robot on the moon. It must pick up the object, drop it
on the drop zone and then reach the finish tile. Call language_reference first.

AVAILABLE TOOLS:
- language_reference: The programming language and the map legend
- list_challenges: List challenges with their maps
- get_challenge: Get one challenge
- create_challenge: Create a challenge from map rows
- compile_program: Check a program without running it
- solve_challenge: Run a program against a challenge
- get_attempt: Get one attempt and its result
- list_attempts: List a player's attempts`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "language_reference",
		Description: "Explain the robot programming language and the map legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleLanguageReference)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_challenges",
		Description: "List all challenges with their maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListChallenges)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_challenge",
		Description: "Get a challenge and its map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Challenge name",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleGetChallenge)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_challenge",
		Description: "Create a new challenge from map rows (see language_reference for the map legend)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Unique challenge name",
				},
				"layout": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Map rows, top to bottom, e.g. [\"so2\", \"22d\", \"22f\"]",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional description",
				},
				"author": map[string]interface{}{
					"type":        "string",
					"description": "Optional author",
				},
			},
			Required: []string{"name", "layout"},
		},
	}, c.handleCreateChallenge)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "compile_program",
		Description: "Compile a program and show the instructions in execution order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Program text, one '<line_number> <instruction>' per line",
				},
			},
			Required: []string{"source"},
		},
	}, c.handleCompile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_challenge",
		Description: "Run a program against a challenge",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Challenge name",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Your player name",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Program text, one '<line_number> <instruction>' per line",
				},
			},
			Required: []string{"name", "player_id", "source"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_attempt",
		Description: "Get an attempt and its result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"attempt_id": map[string]interface{}{
					"type":        "string",
					"description": "Attempt ID returned by solve_challenge",
				},
			},
			Required: []string{"attempt_id"},
		},
	}, c.handleGetAttempt)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_attempts",
		Description: "List attempts, optionally for a single player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Only list this player's attempts (optional)",
				},
			},
		},
	}, c.handleListAttempts)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error        string `json:"error"`
			CompileError string `json:"compile_error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		switch {
		case errResp.Error != "":
			return fmt.Errorf("%s", errResp.Error)
		case errResp.CompileError != "":
			return fmt.Errorf("%s", errResp.CompileError)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// Tool handlers

func (c *Client) handleLanguageReference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var help service.HelpInfo
	if err := c.apiCall(ctx, "GET", "/api/help", nil, &help); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(help.LanguageReference + "\n\n" + help.MapLegend), nil
}

func (c *Client) handleListChallenges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var challenges []*service.ChallengeInfo
	if err := c.apiCall(ctx, "GET", "/api/challenges", nil, &challenges); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(challenges) == 0 {
		return mcp.NewToolResultText("No challenges yet. Create one with create_challenge."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d challenges:\n", len(challenges))
	for _, ch := range challenges {
		sb.WriteString("\n")
		sb.WriteString(formatChallenge(ch))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetChallenge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringArg(arguments(request), "name")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	var ch service.ChallengeInfo
	if err := c.apiCall(ctx, "GET", "/api/challenges/"+url.PathEscape(name), nil, &ch); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatChallenge(&ch)), nil
}

func (c *Client) handleCreateChallenge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var layout []string
	if raw, ok := args["layout"].([]interface{}); ok {
		for _, row := range raw {
			if s, ok := row.(string); ok {
				layout = append(layout, s)
			}
		}
	}

	body := map[string]interface{}{
		"name":        stringArg(args, "name"),
		"layout":      layout,
		"description": stringArg(args, "description"),
		"author":      stringArg(args, "author"),
	}

	var ch service.ChallengeInfo
	if err := c.apiCall(ctx, "POST", "/api/challenges", body, &ch); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Challenge created.\n\n" + formatChallenge(&ch)), nil
}

func (c *Client) handleCompile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{"source": stringArg(arguments(request), "source")}

	var result service.CompileResult
	if err := c.apiCall(ctx, "POST", "/api/compile", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCompileResult(&result)), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name := stringArg(args, "name")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	body := map[string]string{
		"player_id": stringArg(args, "player_id"),
		"source":    stringArg(args, "source"),
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", "/api/challenges/"+url.PathEscape(name)+"/solve", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleGetAttempt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(arguments(request), "attempt_id")
	if id == "" {
		return mcp.NewToolResultError("attempt_id is required"), nil
	}

	var attempt service.AttemptInfo
	if err := c.apiCall(ctx, "GET", "/api/attempts/"+url.PathEscape(id), nil, &attempt); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatAttempt(&attempt)), nil
}

func (c *Client) handleListAttempts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/attempts"
	if player := stringArg(arguments(request), "player_id"); player != "" {
		path += "?player=" + url.QueryEscape(player)
	}

	var attempts []*service.AttemptInfo
	if err := c.apiCall(ctx, "GET", path, nil, &attempts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(attempts) == 0 {
		return mcp.NewToolResultText("No attempts found."), nil
	}

	var sb strings.Builder
	for _, a := range attempts {
		fmt.Fprintf(&sb, "%s  %-12s %-16s %s\n", a.ID, a.PlayerID, a.Challenge, attemptOutcome(a))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// Formatting helpers

func formatChallenge(ch *service.ChallengeInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%dx%d)\n", ch.Name, ch.Width, ch.Height)
	if ch.Description != "" {
		sb.WriteString(ch.Description + "\n")
	}
	if ch.Author != "" {
		fmt.Fprintf(&sb, "Author: %s\n", ch.Author)
	}
	fmt.Fprintf(&sb, "Layout: %s\n", strings.Join(ch.Layout, " "))
	sb.WriteString(ch.Map + "\n")
	return sb.String()
}

func formatCompileResult(result *service.CompileResult) string {
	if !result.Valid {
		return "Compilation failed: " + result.Error
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Compiled %d instructions:\n", result.Instructions)
	for _, line := range result.Listing {
		sb.WriteString(line + "\n")
	}
	if len(result.Duplicates) > 0 {
		fmt.Fprintf(&sb, "Warning: line numbers declared more than once (the last one wins): %v\n", result.Duplicates)
	}
	return sb.String()
}

func formatSolveResult(result *service.SolveResult) string {
	if result.CompileError != "" {
		return "Compilation failed: " + result.CompileError
	}
	if result.Result == nil {
		return "No result"
	}

	var sb strings.Builder
	r := result.Result
	if r.Success {
		fmt.Fprintf(&sb, "SUCCESS! %s solved %s.\n", result.Player, result.Challenge)
	} else {
		fmt.Fprintf(&sb, "FAILED: %s\n", r.Error)
	}
	fmt.Fprintf(&sb, "Attempt: %s\n", result.AttemptID)
	fmt.Fprintf(&sb, "Instructions: %d, steps executed: %d, last line: %d\n", r.Instructions, r.Steps, r.LastLine)
	if result.FinalMap != "" {
		sb.WriteString("\n" + result.FinalMap + "\n")
	}
	return sb.String()
}

func formatAttempt(a *service.AttemptInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Attempt %s by %s on %s: %s\n", a.ID, a.PlayerID, a.Challenge, attemptOutcome(a))
	if a.Result != nil {
		fmt.Fprintf(&sb, "Instructions: %d, steps executed: %d\n", a.Result.Instructions, a.Result.Steps)
	}
	if a.Source != "" {
		sb.WriteString("\nProgram:\n" + a.Source + "\n")
	}
	if a.Map != "" {
		sb.WriteString("\n" + a.Map + "\n")
	}
	return sb.String()
}

func attemptOutcome(a *service.AttemptInfo) string {
	switch {
	case a.Result == nil:
		return a.Status
	case a.Result.Success:
		return "success"
	}
	return "failed: " + a.Result.Error
}
