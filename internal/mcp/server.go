package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nick-dorsch/dolist/internal/tasks"
	"github.com/nick-dorsch/dolist/pkg/models"
)

const (
	ServerName    = "Dolist"
	ServerVersion = "0.1.0"
)

// NewServer creates a new MCP server.
func NewServer(store *tasks.Store) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion)

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a pending task to the top of the list."),
		mcp.WithString("title", mcp.Description("Task title (surrounding whitespace is trimmed)"), mcp.Required()),
	), addTaskHandler(store))

	s.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Mark a pending task completed, or reopen a completed one."),
		mcp.WithString("id", mcp.Description("Task id or a unique id prefix"), mcp.Required()),
	), toggleTaskHandler(store))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Rename a task."),
		mcp.WithString("id", mcp.Description("Task id or a unique id prefix"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title"), mcp.Required()),
	), updateTaskHandler(store))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task."),
		mcp.WithString("id", mcp.Description("Task id or a unique id prefix"), mcp.Required()),
	), deleteTaskHandler(store))

	s.AddTool(mcp.NewTool("clear_completed",
		mcp.WithDescription("Delete every completed task."),
	), clearCompletedHandler(store))

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task."),
		mcp.WithString("id", mcp.Description("Task id or a unique id prefix"), mcp.Required()),
	), getTaskHandler(store))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, newest first."),
		mcp.WithString("filter", mcp.Description("all (default), pending or completed")),
	), listTasksHandler(store))

	s.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Get total, completed, pending and completed-today counts."),
	), getStatsHandler(store))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func addTaskHandler(store *tasks.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title := mcp.ParseString(request, "title", "")

		t, err := store.Add(ctx, title)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func toggleTaskHandler(store *tasks.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := store.Resolve(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		t, err := store.Toggle(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func updateTaskHandler(store *tasks.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := store.Resolve(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		title := mcp.ParseString(request, "title", "")

		t, err := store.Update(ctx, id, title)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func deleteTaskHandler(store *tasks.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := store.Resolve(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, _ := store.Get(id)

		if err := store.Delete(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' deleted successfully", t.Title)), nil
	}
}

func clearCompletedHandler(store *tasks.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		removed, err := store.ClearCompleted(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]int{"removed": removed})
	}
}

func getTaskHandler(store *tasks.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := store.Resolve(mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, ok := store.Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}
		return jsonResult(t)
	}
}

func listTasksHandler(store *tasks.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter, err := models.ParseFilter(mcp.ParseString(request, "filter", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"filter": filter, "tasks": store.Filter(filter)})
	}
}

func getStatsHandler(store *tasks.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats := store.Stats()
		return jsonResult(map[string]int{
			"total":          stats.Total,
			"completed":      stats.Completed,
			"pending":        stats.Pending,
			"completedToday": stats.CompletedToday,
			"completionRate": stats.CompletionRate(),
		})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
