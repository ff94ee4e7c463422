package bfvm

// Validate checks that every bracket in src has a match.
func Validate(src string) error {
	var opens []int
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '[':
			opens = append(opens, i)
		case ']':
			if len(opens) == 0 {
				return &MalformedError{
					Offset:  i,
					Bracket: ']',
				}
			}
			opens = opens[:len(opens)-1]
		}
	}
	if len(opens) > 0 {
		return &MalformedError{
			Offset:  opens[len(opens)-1],
			Bracket: '[',
		}
	}
	return nil
}
