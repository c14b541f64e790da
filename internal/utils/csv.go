package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/mitchellsummers5280-alt/spx-algo-app/internal/domain"
)

func WriteBarsToCSV(bars []domain.Candle, ticker, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"bucket_start", "ticker", "open", "high", "low", "close", "volume"})

	for _, b := range bars {
		writer.Write([]string{
			b.BucketStart.Format(time.RFC3339),
			ticker,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}
