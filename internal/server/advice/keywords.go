package advice

import (
	"context"
	"math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

type Bucket int

const (
	BucketFallback Bucket = iota
	BucketDistress
	BucketWork
	BucketPositive
)

func (b Bucket) String() string {
	switch b {
	case BucketDistress:
		return "distress"
	case BucketWork:
		return "work"
	case BucketPositive:
		return "positive"
	default:
		return "fallback"
	}
}

// priority order of the keyword buckets; the first match wins
var bucketOrder = []Bucket{BucketDistress, BucketWork, BucketPositive}

var bucketKeywords = map[Bucket][]string{
	BucketDistress: {
		"mệt", "mệt mỏi", "buồn", "chán", "khóc", "cô đơn", "tuyệt vọng",
		"lo lắng", "sợ", "đau", "tổn thương", "stress",
	},
	BucketWork: {
		"deadline", "công việc", "việc", "thi", "bài tập", "sếp", "dự án",
		"kiểm tra", "áp lực", "học", "tăng ca", "báo cáo",
	},
	BucketPositive: {
		"vui", "hạnh phúc", "tuyệt", "thích", "yêu", "biết ơn", "tốt",
		"hào hứng", "bình yên", "happy",
	},
}

var bucketTemplates = map[Bucket][3]string{
	BucketDistress: {
		"Có vẻ hôm nay bạn đã rất vất vả. Hãy cho phép mình nghỉ ngơi một chút nhé.",
		"Cảm xúc của bạn hoàn toàn hợp lý. Thử hít thở sâu và nói chuyện với người bạn tin tưởng xem sao.",
		"Bạn không một mình đâu. Một giấc ngủ ngon và một tách trà ấm có thể giúp bạn dễ chịu hơn.",
	},
	BucketWork: {
		"Công việc nhiều thì hãy chia nhỏ ra và làm từng phần một nhé.",
		"Áp lực là dấu hiệu bạn đang cố gắng. Nhớ xen kẽ những quãng nghỉ ngắn để giữ sức.",
		"Hãy viết ra ba việc quan trọng nhất ngày mai, phần còn lại có thể đợi.",
	},
	BucketPositive: {
		"Thật tuyệt khi thấy bạn vui! Hãy ghi nhớ khoảnh khắc này nhé.",
		"Niềm vui của bạn thật đáng trân trọng. Chia sẻ nó với ai đó thân thiết xem sao.",
		"Tiếp tục giữ năng lượng tích cực này nhé, bạn đang làm rất tốt.",
	},
	BucketFallback: {
		"Cảm ơn bạn đã chia sẻ. Mỗi ngày viết một chút sẽ giúp bạn hiểu mình hơn.",
		"Dù hôm nay thế nào, bạn cũng đã làm tốt khi dành thời gian cho bản thân.",
		"Hãy nhẹ nhàng với chính mình nhé. Ngày mai là một trang mới.",
	},
}

// Templates returns the advice strings of bucket b.
func Templates(b Bucket) []string {
	t := bucketTemplates[b]
	return t[:]
}

// KeywordAdvisor picks a random template from the first bucket whose
// keywords occur in the entry. Mood does not influence the choice.
type KeywordAdvisor struct {
	picker Picker
}

// sharedPicker draws from the package-level generator, which is safe for
// concurrent use.
type sharedPicker struct{}

func (sharedPicker) IntN(n int) int { return rand.IntN(n) }

// NewKeywordAdvisor uses p for template selection; a nil p falls back to the
// global math/rand/v2 source. p is called from concurrent requests and must
// be safe for that.
func NewKeywordAdvisor(p Picker) *KeywordAdvisor {
	if p == nil {
		p = sharedPicker{}
	}
	return &KeywordAdvisor{picker: p}
}

func (a *KeywordAdvisor) Advise(_ context.Context, content string, _ int) string {
	t := bucketTemplates[Classify(content)]
	return t[a.picker.IntN(len(t))]
}

// Classify returns the highest-priority bucket with a keyword present in
// content. Keywords match whole words or phrases only.
func Classify(content string) Bucket {
	text := normalize(content)
	for _, b := range bucketOrder {
		for _, kw := range bucketKeywords[b] {
			if strings.Contains(text, " "+kw+" ") {
				return b
			}
		}
	}
	return BucketFallback
}

// normalize lower-cases s in NFC form, turns everything that is not a letter
// or digit into a single space and pads the result with spaces.
func normalize(s string) string {
	s = strings.ToLower(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}
