package game

// Phase transitions: lobby -> songSelection -> rating -> results ->
// (songSelection | gameOver) -> lobby. Any failure while selecting a
// prompt or aggregating results leaves the phase untouched; the room
// only ever moves after the new state has been computed in full.

// handleStartGame begins the first round. Host only, lobby only,
// enough players, everyone ready.
func (r *Room) handleStartGame(from string) {
	p := r.player(from)
	if p == nil || !p.IsHost {
		r.log.Debug().Str("conn", from).Msg("start rejected: not host")
		return
	}
	if r.phase != PhaseLobby {
		return
	}
	if len(r.players) < MinPlayers {
		r.broadcast(gameError(ErrNotEnough.Error()))
		return
	}
	for _, pl := range r.players {
		if !pl.IsReady {
			r.broadcast(gameError(ErrPlayersNotReady.Error()))
			return
		}
	}
	r.startRound(true)
}

// startRound selects a prompt and moves the room into songSelection.
// Prompts are drawn uniformly at random with replacement, so repeats
// across rounds are possible.
func (r *Room) startRound(first bool) {
	prompt, err := r.selectPrompt()
	if err != nil {
		r.log.Error().Err(err).Msg("failed to start round")
		r.broadcast(gameError("Failed to start game"))
		return
	}

	r.resetRoundState()
	r.roundResults = nil
	r.currentPrompt = prompt
	r.phase = PhaseSongSelection

	r.broadcast(gamePhaseUpdated(r.phase, r.currentRound))
	r.pause()
	r.broadcast(promptUpdated(prompt))
	if first {
		r.broadcast(gameStarted(prompt))
	}
	r.log.Info().Int("round", r.currentRound).Str("prompt", prompt).Msg("round started")
}

func (r *Room) selectPrompt() (string, error) {
	prompts := r.settings.SelectedPrompts
	if len(prompts) == 0 {
		return "", ErrNoPrompts
	}
	return prompts[r.rng.Intn(len(prompts))], nil
}

// handleSongSelected records a player's submission for the round.
// Resubmitting overwrites: last write wins, by design.
func (r *Room) handleSongSelected(ev SongSelected, from string) {
	if r.phase != PhaseSongSelection {
		return
	}
	p := r.player(from)
	if p == nil {
		return
	}

	r.subs.submit(from, Submission{
		SongID:       ev.TrackID,
		Player:       SubmittedBy{ID: from, Name: p.Name},
		TrackDetails: ev.TrackDetails,
	})

	r.broadcast(songSelectedNotice(from, p.Name))
	r.broadcast(songSubmissionUpdate(r.subs.count(), len(r.players)))

	if r.subs.allSubmitted(r.players) {
		r.enterRating()
	}
}

func (r *Room) enterRating() {
	r.phase = PhaseRating
	r.currentRatingIndex = 0
	r.ratings.reset()
	r.broadcast(gamePhaseUpdated(r.phase, r.currentRound))
	r.startRatingRound()
}

// startRatingRound opens rating for the song at currentRatingIndex.
// The submitter's own rating is recorded as a skip up front; they are
// never prompted for their own song.
func (r *Room) startRatingRound() {
	songs := r.subs.ordered()
	song := songs[r.currentRatingIndex]
	r.ratings.record(song.SongID, song.Player.ID, SkipRating)

	r.log.Info().
		Int("ratingIndex", r.currentRatingIndex).
		Int("totalSongs", len(songs)).
		Str("song", song.Name).
		Msg("rating round started")

	r.pause()
	r.broadcast(startRating(r.currentRatingIndex, len(songs), song))
}

// handleSubmitRating records one vote for the song currently under
// rating. A repeat vote from the same player overwrites the previous
// one; a submitter voting on their own song stays a skip.
func (r *Room) handleSubmitRating(ev SubmitRating, from string) {
	if r.phase != PhaseRating {
		return
	}
	if r.player(from) == nil {
		return
	}
	songs := r.subs.ordered()
	if r.currentRatingIndex >= len(songs) {
		return
	}
	song := songs[r.currentRatingIndex]
	if ev.SongID != song.SongID {
		return
	}

	value := ev.Rating
	if from == song.Player.ID {
		value = SkipRating
	}
	r.ratings.record(song.SongID, from, value)

	// The submitter's auto-recorded skip is bookkeeping, not a vote;
	// the count on the wire reflects real voters only.
	r.broadcast(ratingUpdate(r.ratings.count(song.SongID)-1, len(r.players), song.SongID))

	r.advanceRatingIfComplete()
}

// advanceRatingIfComplete moves past every song whose rating is
// complete for the current player list. It runs after each vote and
// after a leave, since a departure can be what completes a song.
func (r *Room) advanceRatingIfComplete() {
	for {
		songs := r.subs.ordered()
		if r.currentRatingIndex >= len(songs) {
			return
		}
		song := songs[r.currentRatingIndex]
		if !r.ratings.isComplete(song.SongID, song.Player.ID, r.players) {
			return
		}
		r.currentRatingIndex++
		if r.currentRatingIndex >= len(songs) {
			r.finishRound()
			return
		}
		r.startRatingRound()
	}
}

// finishRound aggregates ratings and moves the room to results.
func (r *Room) finishRound() {
	result, err := computeResults(r.subs.ordered(), r.ratings.snapshot())
	if err != nil {
		r.log.Error().Err(err).Msg("failed to calculate round results")
		r.broadcast(gameError("Failed to calculate round results"))
		return
	}

	r.phase = PhaseResults
	r.roundResults = &result
	r.history = append(r.history, result)

	r.broadcast(gamePhaseUpdated(r.phase, r.currentRound))
	r.pause()
	r.broadcast(roundResults(result))
	r.log.Info().Str("winner", result.WinnerSongID).Msg("round finished")
}

// handleNextRound advances past the results screen: either into the
// next round or, after the final round, into gameOver.
func (r *Room) handleNextRound(from string) {
	if r.player(from) == nil {
		return
	}
	if r.phase != PhaseResults {
		return
	}

	if r.currentRound >= r.settings.NumberOfRounds {
		r.phase = PhaseGameOver
		r.broadcast(gamePhaseUpdated(r.phase, r.currentRound))
		standings := computeStandings(r.history)
		r.pause()
		r.broadcast(gameWinner(standings))
		r.log.Info().Int("rounds", r.currentRound).Msg("game over")
		return
	}

	r.currentRound++
	r.startRound(false)
}

// handleReturnToLobby resets a finished game back to the lobby,
// keeping players and settings.
func (r *Room) handleReturnToLobby(from string) {
	if r.player(from) == nil {
		return
	}
	if r.phase != PhaseGameOver {
		return
	}

	r.resetRoundState()
	r.roundResults = nil
	r.history = nil
	r.currentPrompt = ""
	r.currentRound = 1
	r.phase = PhaseLobby

	r.broadcast(gamePhaseUpdated(r.phase, r.currentRound))
	r.log.Info().Msg("returned to lobby")
}
