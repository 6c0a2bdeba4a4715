package config

// SampleYAML is the built-in AI takeoff scenario. It is used when no config
// file is given and is what --write-sample writes out.
const SampleYAML = `# AI takeoff timeline scenario. Times are in years from now.
trials: 1000
workers: 0
logging:
  level: info

milestones:
  - name: now
    description: Origin of the timeline.
    distribution:
      kind: constant
      value: 0

  - name: takeoff_start
    description: AI systems enter the human range on research-relevant skills.
    distribution:
      kind: lognormal
      median: 8
      spread: 2

  - name: public_awareness
    description: The public broadly recognises that takeoff is under way.
    after: takeoff_start
    distribution:
      kind: normal
      mean: 1.5
      stdev: 1.5
      min: 0

  - name: superhuman_ai
    description: Every tracked skill has crossed its end-of-takeoff threshold.
    after: takeoff_start
    distribution:
      kind: takeoff
      takeoff:
        years_to_cross_human_range: 4
        step_days: 1
        max_years: 100
        skills:
          - name: research
            accelerates: true
            start: {mean: 0, stdev: 0.25}
            end: {mean: 1.41, stdev: 0.6}
          - name: engineering
            accelerates: true
            start: {mean: 0, stdev: 0.25}
            end: {mean: 1.41, stdev: 0.6}
          - name: strategy
            start: {mean: -0.5, stdev: 0.5}
            end: {mean: 1.41, stdev: 0.6}
          - name: hacking
            start: {mean: -0.5, stdev: 1.5}
            end: {mean: 1, stdev: 1}
          - name: persuasion
            start: {mean: -0.5, stdev: 1.5}
            end: {mean: 3, stdev: 2}

  - name: disempowerment_capability
    description: AI systems are plausibly able to disempower humanity.
    after: superhuman_ai
    never_probability: 0.1
    distribution:
      kind: mixture
      components:
        - weight: 0.3
          kind: constant
          value: 0
        - weight: 0.7
          kind: exponential
          mean: 2

pairs:
  - name: from_now
    start: now
    end: disempowerment_capability
  - name: from_takeoff_start
    start: takeoff_start
    end: disempowerment_capability
  - name: from_public_awareness
    start: public_awareness
    end: disempowerment_capability
`
