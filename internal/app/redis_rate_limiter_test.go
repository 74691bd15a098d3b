package app

import "testing"

func TestParseRateLimitReply(t *testing.T) {
	tests := []struct {
		name           string
		raw            interface{}
		windowMs       int64
		wantCount      int64
		wantRetryAfter int
		wantErr        bool
	}{
		{
			name:           "count with remaining ttl",
			raw:            []interface{}{int64(3), int64(42500)},
			windowMs:       60000,
			wantCount:      3,
			wantRetryAfter: 43,
		},
		{
			name:           "sub-second ttl rounds up to one",
			raw:            []interface{}{int64(1), int64(120)},
			windowMs:       60000,
			wantCount:      1,
			wantRetryAfter: 1,
		},
		{
			name:           "missing expiry falls back to the window",
			raw:            []interface{}{int64(7), int64(-1)},
			windowMs:       60000,
			wantCount:      7,
			wantRetryAfter: 60,
		},
		{
			name:    "not a pair",
			raw:     []interface{}{int64(1)},
			wantErr: true,
		},
		{
			name:    "not a slice",
			raw:     "OK",
			wantErr: true,
		},
		{
			name:    "count wrong type",
			raw:     []interface{}{"3", int64(1000)},
			wantErr: true,
		},
		{
			name:      "ttl wrong type keeps the count",
			raw:       []interface{}{int64(5), "1000"},
			wantCount: 5,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, retryAfter, err := parseRateLimitReply(tt.raw, tt.windowMs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got count=%d retryAfter=%d", count, retryAfter)
				}
				if count != tt.wantCount {
					t.Fatalf("expected count %d alongside the error, got %d", tt.wantCount, count)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRateLimitReply returned error: %v", err)
			}
			if count != tt.wantCount || retryAfter != tt.wantRetryAfter {
				t.Fatalf("got count=%d retryAfter=%d, want count=%d retryAfter=%d",
					count, retryAfter, tt.wantCount, tt.wantRetryAfter)
			}
		})
	}
}
