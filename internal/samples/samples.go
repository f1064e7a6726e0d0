// Package samples generates reproducible random samples to feed histograms.
package samples

import (
	"bufio"
	"io"
	"math/rand"
	"strconv"

	"github.com/aclements/go-moremath/stats"
)

// Generator draws samples from a normal distribution using its own seeded
// source, so two generators with the same seed yield the same sequence.
type Generator struct {
	dist stats.NormalDist
	rand *rand.Rand
}

func NewNormal(mean, stdDev float64, seed int64) *Generator {
	return &Generator{
		dist: stats.NormalDist{Mu: mean, Sigma: stdDev},
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) Next() float64 {
	return g.dist.Rand(g.rand)
}

// Fill overwrites every element of dst with a new sample and returns it.
func (g *Generator) Fill(dst []float64) []float64 {
	for i := range dst {
		dst[i] = g.Next()
	}
	return dst
}

// WriteSamples writes n newline-separated samples to w.
func (g *Generator) WriteSamples(w io.Writer, n int) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for i := 0; i < n; i++ {
		buf = strconv.AppendFloat(buf[:0], g.Next(), 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
