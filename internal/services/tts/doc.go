// Package tts voices poem lines through an external text-to-speech command,
// one clip per line, with a random voice per line for variety.
package tts
