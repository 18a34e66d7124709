package annotate

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CoNLL-U column indexes
const (
	colID = iota
	colForm
	colLemma
	colUPOS
	colXPOS
	colFeats
	colHead
	colDeprel
	colDeps
	colMisc
	numCols
)

// ParseCoNLLU reads a CoNLL-U stream into a single table.
//
// Positions run across sentence boundaries so that the table reflects the
// whole document. Multiword ranges (1-2) and empty nodes (1.1) are skipped;
// an underscore lemma is reported as absent.
func ParseCoNLLU(r io.Reader) (Table, error) {
	var table Table
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) != numCols {
			return nil, fmt.Errorf("conllu line %d: expected %d columns, got %d", lineNo, numCols, len(cols))
		}

		id := cols[colID]
		if strings.ContainsAny(id, "-.") {
			continue
		}
		if _, err := strconv.Atoi(id); err != nil {
			return nil, fmt.Errorf("conllu line %d: bad token id %q", lineNo, id)
		}

		tok := Token{
			Position: len(table) + 1,
			Surface:  cols[colForm],
			Tag:      ParseTag(cols[colUPOS]),
		}
		// "_" is only a real lemma when the form itself is an underscore
		if lemma := cols[colLemma]; lemma != "_" || cols[colForm] == "_" {
			tok.Lemma = Lemma(lemma)
		}
		table = append(table, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
