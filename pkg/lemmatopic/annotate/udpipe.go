package annotate

import (
	"context"
	"strings"

	"github.com/cognicore/lemmatopic/internal/udpipe"
)

// Processor produces CoNLL-U for a piece of text.
type Processor interface {
	Process(ctx context.Context, text string) (string, error)
}

// UDPipe annotates documents through a UDPipe service.
type UDPipe struct {
	proc Processor
}

// NewUDPipe creates an annotator for the given endpoint and model selector.
// An empty endpoint uses the public LINDAT service.
func NewUDPipe(endpoint, model string) *UDPipe {
	return NewUDPipeWithProcessor(&udpipe.Client{Endpoint: endpoint, Model: model})
}

// NewUDPipeWithProcessor wraps an existing CoNLL-U producer.
func NewUDPipeWithProcessor(p Processor) *UDPipe {
	return &UDPipe{proc: p}
}

// Annotate implements Annotator.
func (u *UDPipe) Annotate(ctx context.Context, text string) (Table, error) {
	out, err := u.proc.Process(ctx, text)
	if err != nil {
		return nil, wrap("udpipe", err)
	}
	table, err := ParseCoNLLU(strings.NewReader(out))
	if err != nil {
		return nil, wrap("udpipe", err)
	}
	return table, nil
}
