package tntp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// Sentinel errors for TNTP ingestion.
var (
	// ErrBadMetadata indicates a malformed angle-bracket metadata line or a
	// count tag contradicting the parsed records.
	ErrBadMetadata = errors.New("tntp: bad metadata")

	// ErrBadRecord indicates a malformed link or trip record.
	ErrBadRecord = errors.New("tntp: bad record")
)

// linkFields is the number of leading numeric fields of a link record:
// tail, head, capacity, length, free-flow time, b, power, speed, toll.
// A trailing link-type field is accepted and ignored.
const linkFields = 9

// ReadNetwork parses a TNTP network file into link records ready for
// network.New. The <NUMBER OF LINKS> metadata tag, when present, is checked
// against the record count.
func ReadNetwork(r io.Reader) ([]network.Link, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	meta, lineNo, err := readMetadata(sc)
	if err != nil {
		return nil, err
	}

	var links []network.Link
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "~") {
			continue
		}
		line = strings.TrimSuffix(line, ";")
		fields := strings.Fields(line)
		if len(fields) < linkFields {
			return nil, fmt.Errorf("%w: line %d: want at least %d fields, got %d", ErrBadRecord, lineNo, linkFields, len(fields))
		}
		nums := make([]float64, linkFields)
		for i := 0; i < linkFields; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d field %d: %v", ErrBadRecord, lineNo, i+1, err)
			}
			nums[i] = v
		}
		links = append(links, network.Link{
			From:         int(nums[0]),
			To:           int(nums[1]),
			Capacity:     nums[2],
			Length:       nums[3],
			FreeFlowTime: nums[4],
			Alpha:        nums[5],
			Beta:         nums[6],
			SpeedLimit:   nums[7],
			Toll:         nums[8],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tntp: read network: %w", err)
	}
	if want, ok := meta["NUMBER OF LINKS"]; ok && int(want) != len(links) {
		return nil, fmt.Errorf("%w: <NUMBER OF LINKS> says %d, parsed %d", ErrBadMetadata, int(want), len(links))
	}

	return links, nil
}

// ReadTrips parses a TNTP trips file into demand entries ready for
// network.NewDemand. Intrazonal and zero-volume entries are kept here and
// filtered by NewDemand, so the parse is a faithful view of the file.
func ReadTrips(r io.Reader) ([]network.Trip, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	_, lineNo, err := readMetadata(sc)
	if err != nil {
		return nil, err
	}

	var (
		trips  []network.Trip
		origin int
		inBlk  bool
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "~") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "Origin"); ok {
			o, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: origin: %v", ErrBadRecord, lineNo, err)
			}
			origin, inBlk = o, true

			continue
		}
		if !inBlk {
			return nil, fmt.Errorf("%w: line %d: trip entry before any Origin block", ErrBadRecord, lineNo)
		}
		for _, entry := range strings.Split(line, ";") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			dest, vol, ok := strings.Cut(entry, ":")
			if !ok {
				return nil, fmt.Errorf("%w: line %d: entry %q: want \"dest : volume\"", ErrBadRecord, lineNo, entry)
			}
			d, err := strconv.Atoi(strings.TrimSpace(dest))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: destination: %v", ErrBadRecord, lineNo, err)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(vol), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: volume: %v", ErrBadRecord, lineNo, err)
			}
			trips = append(trips, network.Trip{Origin: origin, Dest: d, Volume: v})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tntp: read trips: %w", err)
	}

	return trips, nil
}

// readMetadata consumes the angle-bracket header up to <END OF METADATA>,
// returning the numeric tags by upper-cased name and the number of lines
// consumed. Non-numeric tag values are ignored.
func readMetadata(sc *bufio.Scanner) (map[string]float64, int, error) {
	meta := make(map[string]float64)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "~") {
			continue
		}
		if !strings.HasPrefix(line, "<") {
			return nil, lineNo, fmt.Errorf("%w: line %d: expected metadata tag, got %q", ErrBadMetadata, lineNo, line)
		}
		end := strings.Index(line, ">")
		if end < 0 {
			return nil, lineNo, fmt.Errorf("%w: line %d: unterminated tag", ErrBadMetadata, lineNo)
		}
		tag := strings.TrimSpace(line[1:end])
		if strings.EqualFold(tag, "END OF METADATA") {
			return meta, lineNo, nil
		}
		val := strings.TrimSpace(line[end+1:])
		if val == "" {
			continue
		}
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			meta[strings.ToUpper(tag)] = v
		}
	}

	return meta, lineNo, nil
}
