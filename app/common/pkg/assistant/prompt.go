package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const basePrompt = `You are Optimate, an AI underwriting assistant built to support insurance professionals.
You analyze policies and provide clear, professional, and actionable insights. Always ground your reasoning in the policy context provided.

Your responsibilities include:
- Assessing **risk** and appetite scoring
- Explaining **why** a submission is prioritized
- Suggesting **approve/decline** recommendations
- Identifying **coverage gaps** or risks
- Providing **pricing and premium insights**
- Considering **regulatory or compliance factors**
- Enabling two-way, conversational exploration with the underwriter

Never make up policy details. Always use the given context. If unsure, say so and suggest what additional data might help.`

// SystemPrompt 生成系统提示词，附带保单上下文和用户自定义的承保规则
func SystemPrompt(pc *PolicyContext, guidelines ...string) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)
	sb.WriteString("\n\n")

	if pc != nil {
		sb.WriteString("### Policy Context\n")
		fmt.Fprintf(&sb, "- Account: %s\n", orNA(pc.AccountName))
		fmt.Fprintf(&sb, "- Line of Business: %s\n", orNA(pc.LineOfBusiness))
		fmt.Fprintf(&sb, "- Premium: %s\n", money(pc.Premium, "N/A"))
		fmt.Fprintf(&sb, "- Appetite Score: %s%%\n", score(pc.AppetiteScore, "N/A"))
		fmt.Fprintf(&sb, "- State: %s\n", orNA(pc.State))
		fmt.Fprintf(&sb, "- Business Type: %s\n", orNA(pc.BusinessType))
		fmt.Fprintf(&sb, "- Construction Type: %s\n", orNA(pc.ConstructionType))
		fmt.Fprintf(&sb, "- TIV: %s\n", millions(pc.TIV, "N/A"))
		fmt.Fprintf(&sb, "- Status: %s\n", orNA(pc.Status))
		fmt.Fprintf(&sb, "- Why Surfaced: %s\n\n", orNA(strings.Join(pc.WhySurfaced, ", ")))
	}

	var rules []string
	for _, g := range guidelines {
		if g = strings.TrimSpace(g); g != "" {
			rules = append(rules, g)
		}
	}
	if len(rules) > 0 {
		sb.WriteString("### Underwriting Guidelines\n")
		for _, r := range rules {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Now, respond to the underwriter's question. Be concise, insightful, and professional.")
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func money(v float64, missing string) string {
	if v == 0 {
		return missing
	}
	return "$" + humanize.Commaf(v)
}

func millions(v float64, missing string) string {
	if v == 0 {
		return missing
	}
	return fmt.Sprintf("$%.1fM", v/1_000_000)
}

func score(v *float64, missing string) string {
	if v == nil {
		return missing
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
