package analog

// Actuate advances the state machine of one logical key. Bit col of *row is
// the key-down state. distance is the current displacement and maxOut the
// curve ceiling; thresholds above the ceiling are clamped to it. The return
// value reports a down/up transition of the bit.
//
// DKS keys only record the distance: their logical keys are actuated by the
// scanner with the same distance.
func Actuate(cfg *KeyConfig, key *Key, row *uint32, col uint8, distance, maxOut uint8) bool {
	key.Distance = distance

	mask := uint32(1) << col
	was := *row&mask != 0
	act := max(min(cfg.Actuation, maxOut), 1)

	var now bool
	switch cfg.Kind {
	case Threshold:
		now = distance >= act
	case Hysteresis:
		rel := min(cfg.Release, act)
		if was {
			now = distance >= rel && distance != 0
		} else {
			now = distance >= act
		}
	case RapidTrigger, ContinuousRapidTrigger:
		now = rapid(cfg, key, was, distance, act)
	case DKS:
		return false
	default:
		now = false
	}

	if now == was {
		return false
	}
	if now {
		*row |= mask
	} else {
		*row &^= mask
	}
	return true
}

func rapid(cfg *KeyConfig, key *Key, pressed bool, d, act uint8) bool {
	if !key.Armed {
		if d < act {
			key.Extreme = d
			return false
		}
		key.Armed = true
		key.Extreme = d
		return true
	}

	leave := d < act
	if cfg.Kind == ContinuousRapidTrigger {
		leave = d == 0
	}
	if leave {
		key.Armed = false
		key.Extreme = d
		return false
	}

	if pressed {
		if d > key.Extreme {
			key.Extreme = d
		} else if int(key.Extreme)-int(d) >= int(max(cfg.ReleaseSensitivity, 1)) {
			key.Extreme = d
			return false
		}
		return true
	}

	if d < key.Extreme {
		key.Extreme = d
	} else if int(d)-int(key.Extreme) >= int(max(cfg.PressSensitivity, 1)) {
		key.Extreme = d
		return true
	}
	return false
}
