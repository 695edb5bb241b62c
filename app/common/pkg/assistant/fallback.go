package assistant

import (
	"fmt"
	"strings"
)

// Fallback 根据关键词生成固定应答，模型不可用时使用
func Fallback(message string, pc *PolicyContext) string {
	text := strings.ToLower(message)
	if pc == nil {
		pc = &PolicyContext{}
	}

	appetite := score(pc.AppetiteScore, "not available")
	premium := money(pc.Premium, "not specified")
	tiv := millions(pc.TIV, "unknown")
	line := orDefault(pc.LineOfBusiness, "policy")
	state := orDefault(pc.State, "the specified state")
	client := orDefault(pc.AccountName, "the client")

	switch {
	case containsAny(text, "risk", "score"):
		return fmt.Sprintf("This policy's appetite score is %s%%. The risk assessment reflects factors like the %s, construction type (%s), and location in %s. Would you like me to break down which factors helped or hurt this score?",
			appetite, line, orDefault(pc.ConstructionType, "unknown"), state)

	case containsAny(text, "premium", "price", "cost"):
		return fmt.Sprintf("The total premium is %s, with a TIV of %s. This pricing reflects exposure, coverage, and loss history. Do you want me to compare it to similar policies?",
			premium, tiv)

	case containsAny(text, "coverage", "limit"):
		return fmt.Sprintf("This %s covers assets valued at %s, tailored to the client's risk profile in %s. Which coverage aspects would you like to explore further?",
			line, tiv, state)

	case containsAny(text, "appetite", "fit"):
		alignment := "low"
		switch {
		case atLeast(pc.AppetiteScore, 80):
			alignment = "strong"
		case atLeast(pc.AppetiteScore, 50):
			alignment = "moderate"
		}
		return fmt.Sprintf("This submission shows %s alignment with appetite guidelines. Would you like me to list which criteria it meets and which it doesn't?", alignment)

	case containsAny(text, "recommendation", "approve", "decline"):
		rec := "decline"
		if atLeast(pc.AppetiteScore, 70) {
			rec = "approval"
		}
		return fmt.Sprintf("Based on the appetite score of %s%% and underwriting factors, I recommend %s. Should I highlight the top 3 reasons behind this recommendation?",
			appetite, rec)

	case containsAny(text, "client", "account"):
		kind := "new business"
		if strings.EqualFold(pc.BusinessType, "renewal") {
			kind = "a renewal"
		}
		return fmt.Sprintf("This is %s for %s. Would you like insights into their retention or growth potential?", kind, client)

	case containsAny(text, "sla", "timeline", "deadline"):
		return fmt.Sprintf("This submission is in %s and needs to be processed in line with SLA timelines. Should I suggest next steps to stay compliant?",
			orDefault(pc.Status, "review status"))
	}

	return fmt.Sprintf("I'm here to help analyze this %s for %s. I can explain risk scores, premiums, coverage, appetite fit, or give recommendations. What would you like to dive into?",
		line, client)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func atLeast(v *float64, threshold float64) bool {
	return v != nil && *v >= threshold
}
