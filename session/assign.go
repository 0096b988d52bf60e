package session

import (
	"crypto/rand"
	"math/big"
)

// Random supplies uniform integers in [0, n).
type Random interface {
	IntN(n int) int
}

// CryptoRandom draws from crypto/rand.
type CryptoRandom struct{}

func (CryptoRandom) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}

// Shuffle returns a Fisher-Yates permutation of a copy of players.
func Shuffle(players []string, random Random) []string {
	out := make([]string, len(players))
	copy(out, players)
	for i := len(out) - 1; i > 0; i-- {
		j := random.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Assign shuffles players and hands each player's word to the next player in
// the shuffled ring. Nobody receives their own word unless they are alone.
// Every player in players must have an entry in words.
func Assign(players []string, words map[string]string, random Random) map[string]string {
	ring := Shuffle(players, random)
	assigned := make(map[string]string, len(ring))
	for i, giver := range ring {
		receiver := ring[(i+1)%len(ring)]
		assigned[receiver] = words[giver]
	}
	return assigned
}
