// Package acquire produces the local audio file a run transcribes.
//
// A Fetcher takes a source (a media URL or, for the file strategy, a local
// path) and writes audio to a destination path. The ytdlp fetcher shells out
// to yt-dlp; the file fetcher copies a local recording so run cleanup never
// touches the user's original; the auto fetcher picks between them per
// source. Every failure is an *AcquisitionError, which matches
// services.ErrAcquisition under errors.Is.
package acquire
