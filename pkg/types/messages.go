package types

// Client -> Server (selected by "action")
//
// find_match:
//   topic_id: number | null
//   task_count: number
//   match_duration: number (seconds)
//
// create_room:
//   topic_id: number | null
//   task_count: number
//   match_duration: number (seconds)
//
// join_room:
//   code: string (4 digits)
//
// cancel_search: {}
//
// leave_game: {}
//
// submit_answer:
//   answer: string (option literal or trimmed free text)

// Server -> Client (selected by "type")
//
// status:
//   status: "searching" | "idle"
//
// room_created:
//   room_code: string
//
// countdown:
//   value: number // repeats down to 0
//
// game_start:
//   current_task: { id, question, options? }
//   total_tasks: number
//   timer: number (seconds, authoritative)
//   attempts_left: number
//
// next_task:
//   current_task: { id, question, options? }
//   attempts_left: number
//
// opponent_progress:
//   opponent_answered: boolean
//   opponent_score: number
//
// match_update:
//   timer: number
//   scores: { [playerId]: number }
//
// answer_result:
//   is_correct: boolean
//   attempts_left?: number
//   correct_answer?: string // revealed on the final failed attempt
//
// attempts_exhausted: {}
//
// game_finished:
//   scores: { [playerId]: number }
//   rating_changes: { [playerId]: number }
//   winner_id?: number // absent on a draw
//   disconnected_player_id?: number // present on a forfeit
//
// game_cancelled:
//   reason: string
//
// error:
//   message: string
