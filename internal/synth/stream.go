package synth

import (
	"crypto/sha256"
	"math/rand/v2"
)

// stream 以 SHA-256(key) 為種子的 ChaCha8 亂數流。
// 浮點數轉換由本套件自行定義，不依賴 rand.Rand 的實作細節。
type stream struct {
	src   *rand.ChaCha8
	draws int
}

func newStream(key string) *stream {
	return &stream{src: rand.NewChaCha8(sha256.Sum256([]byte(key)))}
}

func (s *stream) uint64() uint64 {
	s.draws++
	return s.src.Uint64()
}

// float64 回傳 [0, 1)
func (s *stream) float64() float64 {
	return float64(s.uint64()>>11) / (1 << 53)
}

// uniform 回傳 [lo, hi)
func (s *stream) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.float64()
}

// pick 從 choices 中選一個
func (s *stream) pick(choices []float64) float64 {
	return choices[s.uint64()%uint64(len(choices))]
}
