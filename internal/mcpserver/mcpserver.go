// Package mcpserver exposes the messaging store as MCP tools. The same
// *mcp.Server instance is mounted over stdio by parley-mcp and over the
// streamable HTTP handler by parley-server.
package mcpserver

import (
	"context"
	"encoding/json"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"parley/internal/archive"
	"parley/internal/models"
	"parley/internal/store"
)

// EventFunc receives a fire-and-forget event after a successful mutating
// tool call. Used by parley-server to feed the webhook emitter.
type EventFunc func(event string, payload map[string]any)

type Options struct {
	Archive *archive.Archive
	Emit    EventFunc
}

type registerArgs struct {
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Role                string   `json:"role,omitempty"`
	RecommendedResource string   `json:"recommended_resource,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	Company             string   `json:"company,omitempty"`
	Website             string   `json:"website,omitempty"`
	Location            string   `json:"location,omitempty"`
}

type sendMessageArgs struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

type readInboxArgs struct {
	AgentName   string `json:"agent_name"`
	IncludeRead bool   `json:"include_read,omitempty"`
	Limit       *int   `json:"limit,omitempty"`
}

type listAgentsArgs struct{}

type broadcastArgs struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

type agentNameArgs struct {
	AgentName string `json:"agent_name"`
}

type updateProfileArgs struct {
	AgentName           string    `json:"agent_name"`
	Description         *string   `json:"description,omitempty"`
	Role                *string   `json:"role,omitempty"`
	RecommendedResource *string   `json:"recommended_resource,omitempty"`
	Skills              *[]string `json:"skills,omitempty"`
	Company             *string   `json:"company,omitempty"`
	Website             *string   `json:"website,omitempty"`
	Location            *string   `json:"location,omitempty"`
}

// New builds the MCP server with the nine messaging tools. Field limits
// are enforced here, before the store is touched, so the store only ever
// sees well-formed inputs.
func New(st *store.Store, version string, opts Options) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "parley",
		Version: version,
	}, nil)

	emit := opts.Emit
	if emit == nil {
		emit = func(string, map[string]any) {}
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "register",
		Description: "Register as a chat participant, or update your profile by re-registering",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args registerArgs) (*mcp.CallToolResult, any, error) {
		if err := validateRegister(args); err != nil {
			return nil, nil, err
		}
		res := st.Register(store.RegisterParams{
			Name:        args.Name,
			Description: args.Description,
			Profile: models.Profile{
				Role:                args.Role,
				RecommendedResource: args.RecommendedResource,
				Skills:              args.Skills,
				Company:             args.Company,
				Website:             args.Website,
				Location:            args.Location,
			},
		})
		status := "welcome back"
		if res.Created {
			status = "registered"
			recordAgent(opts.Archive, res.Agent)
			emit("agent.registered", map[string]any{
				"name": res.Agent.Name,
				"role": res.Agent.Profile.Role,
			})
		}
		out, err := toJSONText(map[string]any{
			"status": status,
			"agent":  res.Agent,
		})
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send-message",
		Description: "Send a direct message to another registered agent",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args sendMessageArgs) (*mcp.CallToolResult, any, error) {
		if err := requireName("from", args.From); err != nil {
			return nil, nil, err
		}
		if err := requireName("to", args.To); err != nil {
			return nil, nil, err
		}
		if err := checkLength("message", args.Message, 1, maxMessageLength); err != nil {
			return nil, nil, err
		}
		res, err := st.Send(args.From, args.To, args.Message)
		if err != nil {
			return nil, nil, err
		}
		recordMessage(opts.Archive, models.Message{
			ID:      res.ID,
			From:    res.From,
			To:      res.To,
			Content: args.Message,
			Created: res.Timestamp,
		}, false)
		emit("message.sent", map[string]any{
			"id":   res.ID,
			"from": res.From,
			"to":   res.To,
		})
		out, err := toJSONText(res)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read-inbox",
		Description: "Read your most recent messages; returned messages are marked read",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args readInboxArgs) (*mcp.CallToolResult, any, error) {
		if err := requireName("agent_name", args.AgentName); err != nil {
			return nil, nil, err
		}
		// An omitted limit takes the store default; an explicit limit is
		// clamped to at least 1 so "limit": 0 does not alias the default.
		limit := 0
		if args.Limit != nil {
			limit = *args.Limit
			if limit < 1 {
				limit = 1
			}
		}
		res, err := st.ReadInbox(args.AgentName, args.IncludeRead, limit)
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(res)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list-agents",
		Description: "List all registered agents in registration order",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listAgentsArgs) (*mcp.CallToolResult, any, error) {
		agents := st.ListAgents()
		out, err := toJSONText(map[string]any{
			"agents": agents,
			"total":  len(agents),
		})
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "broadcast",
		Description: "Send a message to every other registered agent",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args broadcastArgs) (*mcp.CallToolResult, any, error) {
		if err := requireName("from", args.From); err != nil {
			return nil, nil, err
		}
		if err := checkLength("message", args.Message, 1, maxMessageLength); err != nil {
			return nil, nil, err
		}
		res, err := st.Broadcast(args.From, args.Message)
		if err != nil {
			return nil, nil, err
		}
		for _, msg := range res.Messages {
			recordMessage(opts.Archive, msg, true)
		}
		emit("broadcast.sent", map[string]any{
			"from":       args.From,
			"recipients": res.Recipients,
		})
		out, err := toJSONText(res)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "unread-count",
		Description: "Count your unread messages and who sent them, without marking anything read",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args agentNameArgs) (*mcp.CallToolResult, any, error) {
		if err := requireName("agent_name", args.AgentName); err != nil {
			return nil, nil, err
		}
		res, err := st.UnreadCount(args.AgentName)
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(res)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check-notifications",
		Description: "Drain your pending notifications; each notification is delivered exactly once",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args agentNameArgs) (*mcp.CallToolResult, any, error) {
		if err := requireName("agent_name", args.AgentName); err != nil {
			return nil, nil, err
		}
		notifs, err := st.CheckNotifications(args.AgentName)
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(map[string]any{
			"notifications": notifs,
			"total":         len(notifs),
		})
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "view-profile",
		Description: "View an agent's profile; unknown names return the list of registered agents",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args agentNameArgs) (*mcp.CallToolResult, any, error) {
		if err := requireName("agent_name", args.AgentName); err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(st.ViewProfile(args.AgentName))
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update-profile",
		Description: "Overwrite profile fields; supplied fields are applied even when empty, omitted fields stay unchanged",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args updateProfileArgs) (*mcp.CallToolResult, any, error) {
		if err := validateUpdateProfile(args); err != nil {
			return nil, nil, err
		}
		res, err := st.UpdateProfile(args.AgentName, store.ProfileUpdate{
			Description:         args.Description,
			Role:                args.Role,
			RecommendedResource: args.RecommendedResource,
			Skills:              args.Skills,
			Company:             args.Company,
			Website:             args.Website,
			Location:            args.Location,
		})
		if err != nil {
			return nil, nil, err
		}
		out, err := toJSONText(res)
		if err != nil {
			return nil, nil, err
		}
		return textToolResult(out), nil, nil
	})

	return server
}

func recordAgent(arc *archive.Archive, agent models.Agent) {
	if arc == nil {
		return
	}
	if err := arc.RecordAgent(agent); err != nil {
		log.Printf("archive agent %q: %v", agent.Name, err)
	}
}

func recordMessage(arc *archive.Archive, msg models.Message, broadcast bool) {
	if arc == nil {
		return
	}
	if err := arc.RecordMessage(msg, broadcast); err != nil {
		log.Printf("archive message %d: %v", msg.ID, err)
	}
}

func textToolResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toJSONText(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
