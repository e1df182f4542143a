package journal

import (
	"database/sql"
	"fmt"
	"time"

	"vidgen/internal/jobs"
)

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate renders: %w", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry         Entry
		status        string
		language      sql.NullString
		voice         sql.NullString
		failedStage   sql.NullString
		errorKind     sql.NullString
		errorMessage  sql.NullString
		videoPath     sql.NullString
		finishedVideo sql.NullString
		publishedURL  sql.NullString
		startedRaw    string
		finishedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.JobID,
		&entry.RequestID,
		&entry.Series,
		&entry.Part,
		&language,
		&voice,
		&status,
		&failedStage,
		&errorKind,
		&errorMessage,
		&videoPath,
		&finishedVideo,
		&publishedURL,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Entry{}, fmt.Errorf("scan render: %w", err)
	}
	entry.Status = jobs.Status(status)
	entry.Language = language.String
	entry.Voice = voice.String
	entry.FailedStage = failedStage.String
	entry.ErrorKind = errorKind.String
	entry.ErrorMessage = errorMessage.String
	entry.VideoPath = videoPath.String
	entry.FinishedVideo = finishedVideo.String
	entry.PublishedURL = publishedURL.String
	entry.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid && finishedRaw.String != "" {
		finished := parseTime(finishedRaw.String)
		entry.FinishedAt = &finished
	}
	return entry, nil
}

func parseTime(raw string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
