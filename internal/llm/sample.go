package llm

import (
	"context"
	"math/rand/v2"
)

// Canned reports served by Sample.
var sampleReports = []string{
	`<h1>Strategic Market Expansion Analysis</h1>
<p>Our comprehensive analysis of the target market reveals significant growth opportunities in the Asia-Pacific region. Key findings include:</p>
<ul>
  <li>Projected market size of $2.5 billion by 2025</li>
  <li>Rising middle-class population driving demand for premium products</li>
  <li>Favorable regulatory environment for foreign investments</li>
</ul>
<p>We recommend a phased entry strategy, starting with e-commerce channels and gradually expanding to physical retail presence.</p>`,
	`<h1>Digital Transformation Roadmap</h1>
<p>To stay competitive in the rapidly evolving digital landscape, we propose the following initiatives:</p>
<ol>
  <li>Implement cloud-based ERP system to streamline operations</li>
  <li>Develop a mobile app to enhance customer engagement</li>
  <li>Invest in AI-powered analytics for data-driven decision making</li>
</ol>
<p>Expected outcomes include a 30% increase in operational efficiency and a 25% boost in customer satisfaction scores.</p>`,
}

// SampleModel is reported as the model name of Sample responses.
const SampleModel = "sample"

// Sample is an offline Completer that returns one of the canned reports.
type Sample struct {
	pick func(n int) int
}

var _ Completer = (*Sample)(nil)

// NewSample returns a Sample that picks reports at random.
func NewSample() *Sample {
	return &Sample{pick: rand.IntN}
}

// Report returns a canned report.
func (s *Sample) Report() string {
	pick := s.pick
	if pick == nil {
		pick = rand.IntN
	}
	return sampleReports[pick(len(sampleReports))]
}

// Complete ignores the request and returns a canned report.
func (s *Sample) Complete(ctx context.Context, _ Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return Response{Content: s.Report(), Model: SampleModel}, nil
}

// SampleReports returns a copy of the canned reports.
func SampleReports() []string {
	return append([]string(nil), sampleReports...)
}
