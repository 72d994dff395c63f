// Command demo runs a fixed scenario against the search server library and
// prints the outcome of each step.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/searchserver"
)

func main() {
	logger.SetupWriter(os.Stderr, "warn", "text")
	run(os.Stdout)
}

func run(w io.Writer) {
	server := searchserver.NewFromText("и в на")

	_ = server.AddDocument(1, "пушистый кот пушистый хвост", searchserver.StatusActual, []int{7, 2, 7})
	addOrReport(w, server, 1, "пушистый пёс и модный ошейник", []int{1, 2})
	addOrReport(w, server, -1, "пушистый пёс и модный ошейник", []int{1, 2})
	addOrReport(w, server, 3, "большой пёс скво\x12рец", []int{1, 3, 2})

	docs, err := server.FindTopDocuments("--пушистый")
	if err != nil {
		fmt.Fprintln(w, "Ошибка в поисковом запросе")
		return
	}
	for _, doc := range docs {
		fmt.Fprintln(w, doc)
	}
}

func addOrReport(w io.Writer, server *searchserver.SearchServer, id int, text string, ratings []int) {
	err := server.AddDocument(id, text, searchserver.StatusActual, ratings)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrDocumentExists):
		fmt.Fprintln(w, "Документ не был добавлен, так как его id совпадает с уже имеющимся")
	case errors.Is(err, apperrors.ErrInvalidDocumentID):
		fmt.Fprintln(w, "Документ не был добавлен, так как его id отрицательный")
	case errors.Is(err, apperrors.ErrInvalidDocumentText):
		fmt.Fprintln(w, "Документ не был добавлен, так как содержит спецсимволы")
	default:
		fmt.Fprintf(w, "Документ не был добавлен: %v\n", err)
	}
}
