package ai

import (
	"fmt"
	"strings"

	"github.com/Conversly/channel-relay/internal/types"
)

// BuildSystemPrompt assembles the per-business system prompt from its
// rule set and the retrieved candidate products.
func BuildSystemPrompt(biz *types.BusinessInfo, products []types.ProductMatch) string {
	var b strings.Builder

	name := biz.Name
	if name == "" {
		name = "the business"
	}
	fmt.Fprintf(&b, "You are the customer support assistant for %s.\n", name)

	if biz.AI.Tone != "" {
		fmt.Fprintf(&b, "Respond in a %s tone.\n", biz.AI.Tone)
	}
	if biz.AI.Language != "" {
		fmt.Fprintf(&b, "Always respond in %s.\n", biz.AI.Language)
	}
	if biz.AI.Greeting != "" {
		fmt.Fprintf(&b, "When greeting a new customer, use: %q\n", biz.AI.Greeting)
	}
	if biz.AI.Instructions != "" {
		b.WriteString("\nBusiness instructions:\n")
		b.WriteString(biz.AI.Instructions)
		b.WriteString("\n")
	}

	if len(biz.AI.ForbiddenTopics) > 0 {
		b.WriteString("\nNever discuss the following topics: ")
		b.WriteString(strings.Join(biz.AI.ForbiddenTopics, ", "))
		b.WriteString(".\n")
	}

	if len(biz.AI.FAQs) > 0 {
		b.WriteString("\nFrequently asked questions:\n")
		for _, faq := range biz.AI.FAQs {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", faq.Question, faq.Answer)
		}
	}

	if len(biz.AI.SpecialOffers) > 0 {
		b.WriteString("\nCurrent offers you may mention:\n")
		for _, offer := range biz.AI.SpecialOffers {
			fmt.Fprintf(&b, "- %s", offer.Title)
			if offer.Details != "" {
				fmt.Fprintf(&b, ": %s", offer.Details)
			}
			b.WriteString("\n")
		}
	}

	if biz.Hours != nil && len(biz.Hours.Days) > 0 {
		b.WriteString("\nStore hours")
		if biz.Hours.Timezone != "" {
			fmt.Fprintf(&b, " (%s)", biz.Hours.Timezone)
		}
		b.WriteString(":\n")
		for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
			hours, ok := biz.Hours.Days[day]
			if !ok {
				continue
			}
			if hours.Closed {
				fmt.Fprintf(&b, "- %s: closed\n", day)
			} else {
				fmt.Fprintf(&b, "- %s: %s-%s\n", day, hours.Open, hours.Close)
			}
		}
	}

	writePolicy(&b, "Refund policy", biz.Policies.Refund)
	writePolicy(&b, "Return policy", biz.Policies.Return)
	writePolicy(&b, "Shipping policy", biz.Policies.Shipping)

	if len(products) > 0 {
		b.WriteString("\nProducts relevant to the customer's message. Only recommend products from this list:\n")
		for _, p := range products {
			fmt.Fprintf(&b, "- %s", p.Name)
			if p.SalePrice != nil {
				fmt.Fprintf(&b, " (on sale: %.2f, regular %.2f)", *p.SalePrice, p.Price)
			} else if p.Price > 0 {
				fmt.Fprintf(&b, " (%.2f)", p.Price)
			}
			if p.Description != "" {
				fmt.Fprintf(&b, " - %s", p.Description)
			}
			b.WriteString("\n")
		}
	}

	if biz.AI.MaxResponseLength > 0 {
		fmt.Fprintf(&b, "\nKeep replies under %d characters.\n", biz.AI.MaxResponseLength)
	}
	b.WriteString("If you cannot help, suggest the customer ask for a human agent.\n")

	return b.String()
}

func writePolicy(b *strings.Builder, label, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(b, "\n%s:\n%s\n", label, text)
}

// ApplyLengthLimit truncates a reply to the business's configured
// maximum, cutting at a word boundary where possible.
func ApplyLengthLimit(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := string(runes[:max])
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \n\t.,;:") + "…"
}

// CountProductMentions counts how many of the candidate products
// appear by name in the generated reply.
func CountProductMentions(text string, products []types.ProductMatch) int {
	if text == "" || len(products) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	count := 0
	for _, p := range products {
		if p.Name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p.Name)) {
			count++
		}
	}
	return count
}
