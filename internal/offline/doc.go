// Package offline renders audio files through a kernel without a sound
// card.
//
// Input is decoded from WAV, MP3 or Ogg Vorbis into planar float64
// [Audio], pushed block by block through the same render.Renderer a live
// host uses, with events from a JSON [Script] posted to its queue ahead
// of each block, and written back as 16, 24 or 32-bit PCM WAV.
package offline
