package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"github.com/dmitrijs2005/moodjournal/internal/server/metrics"
)

// Generator is the narrow view of a generative text service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	errNoGenerator = errors.New("generator not configured")
	errEmptyReply  = errors.New("empty reply")
)

// generate calls gen under timeout and normalizes empty replies into an
// error so callers only have one failure path.
func generate(ctx context.Context, gen Generator, timeout time.Duration, prompt string) (string, error) {
	if gen == nil {
		return "", errNoGenerator
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reply, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", errEmptyReply
	}
	return reply, nil
}

// GenerativeAdvisor delegates advice to a Generator and answers with
// FallbackMessage on any failure.
type GenerativeAdvisor struct {
	gen     Generator
	timeout time.Duration
	log     logging.Logger
}

// NewGenerativeAdvisor accepts a nil gen; every call then yields the fallback.
func NewGenerativeAdvisor(gen Generator, timeout time.Duration, log logging.Logger) *GenerativeAdvisor {
	return &GenerativeAdvisor{gen: gen, timeout: timeout, log: log.With("module", "advice")}
}

func advicePrompt(content string, mood int) string {
	return fmt.Sprintf(
		"Tôi vừa viết nhật ký: %q. Tâm trạng hôm nay của tôi là %d/5. "+
			"Hãy cho tôi một lời khuyên ngắn gọn, ấm áp bằng tiếng Việt.",
		content, mood)
}

func (a *GenerativeAdvisor) Advise(ctx context.Context, content string, mood int) string {
	reply, err := generate(ctx, a.gen, a.timeout, advicePrompt(content, mood))
	if err != nil {
		a.log.Warn(ctx, "advice generation failed, using fallback", "error", err)
		metrics.RecordGeneration("advice", metrics.OutcomeFallback)
		return FallbackMessage
	}
	metrics.RecordGeneration("advice", metrics.OutcomeSuccess)
	return reply
}

// Companion is the free-form chat partner. It keeps no conversation state.
type Companion struct {
	gen     Generator
	timeout time.Duration
	log     logging.Logger
}

func NewCompanion(gen Generator, timeout time.Duration, log logging.Logger) *Companion {
	return &Companion{gen: gen, timeout: timeout, log: log.With("module", "companion")}
}

func chatPrompt(displayName, message string) string {
	return fmt.Sprintf(
		"Bạn là một người bạn ấm áp, biết lắng nghe. Hãy trả lời %s một cách "+
			"nhẹ nhàng, chân thành và ngắn gọn.\n%s nói: %s",
		displayName, displayName, message)
}

// Reply answers message on behalf of the companion persona. It returns
// ChatFallbackMessage instead of an error.
func (c *Companion) Reply(ctx context.Context, displayName, message string) string {
	reply, err := generate(ctx, c.gen, c.timeout, chatPrompt(displayName, message))
	if err != nil {
		c.log.Warn(ctx, "chat generation failed, using fallback", "error", err)
		metrics.RecordGeneration("chat", metrics.OutcomeFallback)
		return ChatFallbackMessage
	}
	metrics.RecordGeneration("chat", metrics.OutcomeSuccess)
	return reply
}
