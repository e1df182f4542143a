// Package acquire fetches background clips. Downloads go through yt-dlp with
// restricted file names and an mp4 merge container; jobs without a URL reuse
// a random clip already on disk.
package acquire
