// Package advice turns a journal entry into a short supportive message and
// backs the chat companion. Two strategies exist: keyword buckets with
// randomized templates, and delegation to a generative text service with a
// fixed fallback.
package advice

import "context"

// FallbackMessage is returned whenever generated advice is unavailable.
const FallbackMessage = "Xin lỗi, hiện mình chưa thể đưa ra lời khuyên. Bạn hãy thử lại sau nhé."

// ChatFallbackMessage is the companion's reply when generation fails.
const ChatFallbackMessage = "Xin lỗi, mình đang gặp chút trục trặc. Bạn nhắn lại sau một lát nhé."

// Advisor produces advice for an entry. Implementations never fail: any
// internal problem is folded into a fallback message.
type Advisor interface {
	Advise(ctx context.Context, content string, mood int) string
}

// Picker chooses an index in [0, n). *math/rand/v2.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}
