package worker

import (
	"context"
	"log"

	"resto-service/internal/broker"
	"resto-service/internal/lifecycle"
)

// BoardWorker keeps the order board synchronized with the change feed
type BoardWorker struct {
	feed  broker.Feed
	board *lifecycle.Board
}

// NewBoardWorker creates a new board worker
func NewBoardWorker(feed broker.Feed, board *lifecycle.Board) *BoardWorker {
	return &BoardWorker{
		feed:  feed,
		board: board,
	}
}

// Start loads the board snapshot and consumes change events until ctx is
// cancelled.
func (w *BoardWorker) Start(ctx context.Context) error {
	log.Println("Starting board worker...")

	if err := w.board.Load(ctx); err != nil {
		log.Printf("Board snapshot load failed, starting empty: %v", err)
	}

	if err := w.board.Watch(ctx, w.feed); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// Stop stops the worker
func (w *BoardWorker) Stop() error {
	log.Println("Stopping board worker...")
	w.board.Close()
	return nil
}
