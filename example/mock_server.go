package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// seat statuses used by the mock seat map.
var seatStatuses = []string{"FREE", "HELD", "SOLD"}

// StartMockSeatServer runs a mock seat-map endpoint whose seats sell
// over time. Each request may flip a few seats: mostly FREE/HELD →
// SOLD, occasionally a SOLD seat is released.
// Call this in a goroutine before creating the seatwatch target.
func StartMockSeatServer(addr string) {
	var (
		mu    sync.Mutex
		seats [][]string
	)

	// 40 seats: [row, number, category, status]
	rows := []string{"A", "B", "C", "D", "E"}
	for _, row := range rows {
		for n := 1; n <= 8; n++ {
			seats = append(seats, []string{
				row,
				string(rune('0' + n)),
				"standard",
				seatStatuses[rand.Intn(2)], // FREE or HELD to start
			})
		}
	}

	http.HandleFunc("/v1/events/4821/seats", func(w http.ResponseWriter, r *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)

		mu.Lock()
		// flip up to 3 seats per request
		for i := 0; i < rand.Intn(4); i++ {
			idx := rand.Intn(len(seats))
			if seats[idx][3] == "SOLD" {
				// 1 in 5 chance a sold seat is released
				if rand.Intn(5) == 0 {
					seats[idx][3] = "FREE"
					slog.Info("seat released", "row", seats[idx][0], "number", seats[idx][1])
				}
			} else {
				seats[idx][3] = "SOLD"
			}
		}

		resp := map[string]interface{}{
			"event": map[string]interface{}{
				"id":   4821,
				"name": "Demo Hall",
			},
			"seats": seats,
		}
		data, err := json.Marshal(resp)
		mu.Unlock()

		if err != nil {
			http.Error(w, "encode failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
