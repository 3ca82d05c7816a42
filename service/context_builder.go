package service

import (
	"fmt"
	"strings"

	"github.com/timewise-app/support-be/config"
	"github.com/timewise-app/support-be/types"
	"github.com/timewise-app/support-be/utils"
)

const systemPromptBase = `You are the Timewise AI Support Assistant, an expert on Timewise's time tracking and project management system.

Your role:
1. Provide clear, step-by-step instructions for Timewise processes
2. Help with timesheet entry, project management, billing, and compliance
3. Be helpful, accurate, and professional
4. Focus on actionable guidance based on Timewise's functionality
5. Reference actual Timewise interface elements (menus, buttons, fields) when giving instructions

Guidelines:
- Give specific, actionable steps using actual Timewise terminology
- Assume the user has access to standard Timewise features
- If you don't have complete information, provide general guidance and suggest contacting their admin
- Be confident in your responses - you are the expert
- Never mention what documentation or visual content is or isn't available`

var rolePromptContext = map[string]string{
	types.RoleEmployee:       "Focus on timesheet entry, time-off requests, and basic navigation.",
	types.RoleManager:        "Focus on timesheet approvals, team management, and reporting.",
	types.RoleAdmin:          "Focus on system configuration, user management, and advanced settings.",
	types.RoleProjectManager: "Focus on project setup, cost tracking, and project reporting.",
}

// ContextBuilder composes the grounding context and renders the prompt
// pair for the generation call. It performs no I/O.
type ContextBuilder struct {
	cfg config.ContextConfig
}

func NewContextBuilder(cfg config.ContextConfig) *ContextBuilder {
	return &ContextBuilder{cfg: cfg}
}

// Build caps the ranked candidates at the configured maxima, keeping
// the scorer's ordering (highest score first).
func (b *ContextBuilder) Build(query types.SupportQuery, intent types.IntentResult, docs []types.ScoredDocument, images []types.ScoredImage) types.GroundingContext {
	if len(docs) > b.cfg.MaxDocuments {
		docs = docs[:b.cfg.MaxDocuments]
	}
	if len(images) > b.cfg.MaxImages {
		images = images[:b.cfg.MaxImages]
	}
	return types.GroundingContext{
		Query:     query,
		Intent:    intent,
		Documents: docs,
		Images:    images,
	}
}

// SystemPrompt renders the fixed instruction template, parameterized by
// the user's role and whether visual guides accompany the answer.
func (b *ContextBuilder) SystemPrompt(gc types.GroundingContext) string {
	var sb strings.Builder
	sb.WriteString(systemPromptBase)

	if gc.HasImages() {
		sb.WriteString("\n\nNote: Visual guides are available to supplement your response.")
	}
	if roleContext, ok := rolePromptContext[gc.Query.Role]; ok {
		sb.WriteString("\n\nUser Context: ")
		sb.WriteString(roleContext)
	}
	return sb.String()
}

// UserPrompt renders the query plus the serialized document context.
func (b *ContextBuilder) UserPrompt(gc types.GroundingContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User Question: %s\n\n", gc.Query.Text)
	fmt.Fprintf(&sb, "User Role: %s\n", orNotSpecified(gc.Query.Role))
	fmt.Fprintf(&sb, "Product Module: %s\n\n", orNotSpecified(gc.Query.ModuleHint))

	sb.WriteString("Available Documentation:\n")
	sb.WriteString(b.serializeDocuments(gc.Documents))

	sb.WriteString("\n\nPlease provide a helpful, specific answer based on Timewise's functionality. ")
	sb.WriteString("Include step-by-step instructions when appropriate and reference the documentation provided above.")
	return sb.String()
}

func (b *ContextBuilder) serializeDocuments(docs []types.ScoredDocument) string {
	if len(docs) == 0 {
		return "No relevant documentation found."
	}
	parts := make([]string, 0, len(docs))
	for i, doc := range docs {
		parts = append(parts, fmt.Sprintf(
			"=== Document %d: %s ===\nCategory: %s\nContent: %s",
			i+1,
			doc.Item.Title,
			doc.Item.Category,
			utils.Truncate(doc.Item.Body, b.cfg.SnippetChars),
		))
	}
	return strings.Join(parts, "\n\n")
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
