package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/shubham90-developer/Total-Health-sub003/internal/domain/coupon"
)

const bloomFPR = 0.001

var requiredColumns = []string{
	"restaurantId", "code", "discountPercentage", "maxDiscountAmount",
	"usageLimit", "usagePerUser",
}

// row is one parsed coupon line. VendorID is filled in from the restaurant.
type row struct {
	file int
	line int
	req  coupon.CreateRequest
}

func (r row) key() string {
	return r.req.RestaurantID + "\x00" + coupon.NormalizeCode(r.req.Code)
}

// rowError reports a line that was skipped.
type rowError struct {
	line int
	err  error
}

// readFile parses a gzip-compressed CSV file with a header row. Lines that
// fail to parse or validate are returned as rowErrors; only I/O and header
// problems abort the file.
func readFile(ctx context.Context, idx int, path string) ([]row, []rowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	return parseCSV(ctx, idx, gz)
}

func parseCSV(ctx context.Context, idx int, in io.Reader) ([]row, []rowError, error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "read header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, nil, errors.Errorf("missing column %q", name)
		}
	}

	var (
		rows   []row
		failed []rowError
	)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			failed = append(failed, rowError{line: line, err: err})
			continue
		}
		req, err := parseRecord(rec, cols)
		if err == nil {
			err = req.Validate()
		}
		if err != nil {
			failed = append(failed, rowError{line: line, err: err})
			continue
		}
		rows = append(rows, row{file: idx, line: line, req: req})
	}
	return rows, failed, nil
}

func parseRecord(rec []string, cols map[string]int) (coupon.CreateRequest, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	amount := func(name string, def decimal.Decimal) (decimal.Decimal, error) {
		v := field(name)
		if v == "" {
			return def, nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "parse %s", name)
		}
		return d, nil
	}
	count := func(name string) (int, error) {
		n, err := strconv.Atoi(field(name))
		if err != nil {
			return 0, errors.Wrapf(err, "parse %s", name)
		}
		return n, nil
	}
	at := func(name string) (time.Time, error) {
		v := field(name)
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "parse %s", name)
		}
		return t, nil
	}

	req := coupon.CreateRequest{
		RestaurantID: field("restaurantId"),
		Code:         field("code"),
		Description:  field("description"),
	}
	if req.RestaurantID == "" {
		return req, errors.New("restaurantId is required")
	}

	var err error
	if req.DiscountPercentage, err = amount("discountPercentage", decimal.Zero); err != nil {
		return req, err
	}
	if req.MaxDiscountAmount, err = amount("maxDiscountAmount", decimal.Zero); err != nil {
		return req, err
	}
	if req.MinOrderAmount, err = amount("minOrderAmount", decimal.Zero); err != nil {
		return req, err
	}
	if req.UsageLimit, err = count("usageLimit"); err != nil {
		return req, err
	}
	if req.UsagePerUser, err = count("usagePerUser"); err != nil {
		return req, err
	}
	if req.ValidFrom, err = at("validFrom"); err != nil {
		return req, err
	}
	if req.ValidUntil, err = at("validUntil"); err != nil {
		return req, err
	}
	if req.ValidUntil.IsZero() {
		req.ValidUntil = farFuture
	}
	return req, nil
}

// farFuture stands in for an open-ended validity window.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// dedupe keeps the first row for every restaurant and code, in file order.
// A bloom filter flags keys that may repeat; only those are tracked exactly.
func dedupe(files [][]row) (kept, dropped []row) {
	var total uint
	for _, rows := range files {
		total += uint(len(rows))
	}
	if total == 0 {
		return nil, nil
	}

	filter := bloom.NewWithEstimates(total, bloomFPR)
	candidates := make(map[string]struct{})
	for _, rows := range files {
		for _, r := range rows {
			k := r.key()
			if filter.TestAndAddString(k) {
				candidates[k] = struct{}{}
			}
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, rows := range files {
		for _, r := range rows {
			k := r.key()
			if _, maybe := candidates[k]; maybe {
				if _, dup := seen[k]; dup {
					dropped = append(dropped, r)
					continue
				}
				seen[k] = struct{}{}
			}
			kept = append(kept, r)
		}
	}
	return kept, dropped
}
