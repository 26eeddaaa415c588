// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ka3005p

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks round-trip counts and failure rates for a session
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalTransactions uint64
	Queries           uint64
	Commands          uint64
	Successful        uint64
	MalformedReplies  uint64
	EmptyReplies      uint64
	LinkErrors        uint64
	StrayReplies      uint64 // bytes received after a command that has no reply

	// Round-trip time
	TotalElapsed time.Duration

	// Rates (calculated)
	TransactionRate float64 // transactions/sec
	ErrorRate       float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update folds one transaction into the counters
func (s *Statistics) Update(t Transaction) {
	s.TotalTransactions++
	s.TotalElapsed += t.Elapsed
	if t.Command.IsQuery() {
		s.Queries++
	} else {
		s.Commands++
		if len(t.Reply) > 0 {
			s.StrayReplies++
		}
	}

	switch {
	case t.Err == nil:
		s.Successful++
	case errors.Is(t.Err, ErrMalformedResponse):
		s.MalformedReplies++
		if len(t.Reply) == 0 {
			s.EmptyReplies++
		}
	default:
		s.LinkErrors++
	}

	s.LastUpdateTime = time.Now()
}

// Errors returns the total number of failed transactions
func (s *Statistics) Errors() uint64 {
	return s.MalformedReplies + s.LinkErrors
}

// MeanRoundTrip returns the average transaction duration
func (s *Statistics) MeanRoundTrip() time.Duration {
	if s.TotalTransactions == 0 {
		return 0
	}
	return s.TotalElapsed / time.Duration(s.TotalTransactions)
}

// CalculateRates calculates transaction and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.TransactionRate = float64(s.TotalTransactions) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var successPercent, malformedPercent, linkPercent float64
	if s.TotalTransactions > 0 {
		successPercent = float64(s.Successful) * 100.0 / float64(s.TotalTransactions)
		malformedPercent = float64(s.MalformedReplies) * 100.0 / float64(s.TotalTransactions)
		linkPercent = float64(s.LinkErrors) * 100.0 / float64(s.TotalTransactions)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Transactions:    %8d (%d queries, %d commands)\n", s.TotalTransactions, s.Queries, s.Commands)
	result += fmt.Sprintf("Successful:      %8d (%.1f%%)\n", s.Successful, successPercent)

	if s.MalformedReplies > 0 {
		result += fmt.Sprintf("Malformed:       %8d (%.1f%%)\n", s.MalformedReplies, malformedPercent)
		if s.EmptyReplies > 0 {
			result += fmt.Sprintf("  Empty Replies:    %5d\n", s.EmptyReplies)
		}
	}
	if s.LinkErrors > 0 {
		result += fmt.Sprintf("Link Errors:     %8d (%.1f%%)\n", s.LinkErrors, linkPercent)
	}
	if s.StrayReplies > 0 {
		result += fmt.Sprintf("Stray Replies:   %8d\n", s.StrayReplies)
	}

	result += fmt.Sprintf("Mean Round Trip: %8d ms\n", s.MeanRoundTrip().Milliseconds())
	result += fmt.Sprintf("Rate:            %8.1f tx/sec\n", s.TransactionRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
