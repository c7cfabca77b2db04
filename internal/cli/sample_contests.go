package cli

import (
	"time"

	"contest-session-service/internal/domain"
)

// sampleContests is the demo catalogue used when no database is configured and by migrate --seed.
func sampleContests(duration time.Duration) map[string]domain.Contest {
	questions := []domain.Question{
		{
			ID:          "two-sum",
			Title:       "Two Sum",
			Difficulty:  domain.DifficultyEasy,
			Description: "Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.",
			StarterSource: `def twoSum(nums, target):
    """
    :type nums: List[int]
    :type target: int
    :rtype: List[int]
    """
    # Your solution here
    pass`,
		},
		{
			ID:          "add-two-numbers",
			Title:       "Add Two Numbers",
			Difficulty:  domain.DifficultyMedium,
			Description: "You are given two non-empty linked lists representing two non-negative integers.",
			StarterSource: `def addTwoNumbers(l1, l2):
    """
    :type l1: ListNode
    :type l2: ListNode
    :rtype: ListNode
    """
    # Your solution here
    pass`,
		},
		{
			ID:          "longest-substring",
			Title:       "Longest Substring",
			Difficulty:  domain.DifficultyMedium,
			Description: "Given a string s, find the length of the longest substring without repeating characters.",
			StarterSource: `def lengthOfLongestSubstring(s):
    """
    :type s: str
    :rtype: int
    """
    # Your solution here
    pass`,
		},
		{
			ID:          "median-two-arrays",
			Title:       "Median of Two Arrays",
			Difficulty:  domain.DifficultyHard,
			Description: "Given two sorted arrays nums1 and nums2 of size m and n respectively, return the median.",
			StarterSource: `def findMedianSortedArrays(nums1, nums2):
    """
    :type nums1: List[int]
    :type nums2: List[int]
    :rtype: float
    """
    # Your solution here
    pass`,
		},
	}

	tests := map[string][]domain.TestCase{
		"two-sum": {
			{ID: "two-sum-1", QuestionID: "two-sum", Input: "2 7 11 15\n9", ExpectedOutput: "0 1"},
			{ID: "two-sum-2", QuestionID: "two-sum", Input: "3 2 4\n6", ExpectedOutput: "1 2"},
			{ID: "two-sum-3", QuestionID: "two-sum", Input: "3 3\n6", ExpectedOutput: "0 1"},
		},
		"add-two-numbers": {
			{ID: "add-two-numbers-1", QuestionID: "add-two-numbers", Input: "2 4 3\n5 6 4", ExpectedOutput: "7 0 8"},
			{ID: "add-two-numbers-2", QuestionID: "add-two-numbers", Input: "0\n0", ExpectedOutput: "0"},
		},
		"longest-substring": {
			{ID: "longest-substring-1", QuestionID: "longest-substring", Input: "abcabcbb", ExpectedOutput: "3"},
			{ID: "longest-substring-2", QuestionID: "longest-substring", Input: "bbbbb", ExpectedOutput: "1"},
			{ID: "longest-substring-3", QuestionID: "longest-substring", Input: "pwwkew", ExpectedOutput: "3"},
		},
		"median-two-arrays": {
			{ID: "median-two-arrays-1", QuestionID: "median-two-arrays", Input: "1 3\n2", ExpectedOutput: "2.0"},
			{ID: "median-two-arrays-2", QuestionID: "median-two-arrays", Input: "1 2\n3 4", ExpectedOutput: "2.5"},
		},
	}

	return map[string]domain.Contest{
		"weekly-1": {
			ID:              "weekly-1",
			Title:           "Weekly Contest",
			DurationSeconds: int(duration / time.Second),
			Questions:       questions,
			TestCases:       tests,
		},
	}
}
