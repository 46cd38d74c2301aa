package service

import "time"

func (s *PlayerService) ExpireIdle() int { return s.expireIdle() }

func SetReportClock(s *ReportService, now func() time.Time) { s.now = now }

func SetProgressClock(s *ProgressService, now func() time.Time) { s.now = now }
