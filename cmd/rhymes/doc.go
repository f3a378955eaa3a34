// Command rhymes assembles a short vertical video from a poem of Reddit
// comments: it fetches candidate comments, has a language model arrange them
// into rhyme, renders comment cards and voice-over clips, and composes
// everything over a looping background video with attenuated music.
package main
